package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/steelcutops/winuser/logger"
	"github.com/steelcutops/winuser/winuser/commandmanager"
	"github.com/steelcutops/winuser/winuser/config"
	"github.com/steelcutops/winuser/winuser/schema"
	"github.com/steelcutops/winuser/winuser/usermanager"
)

// version is set at build time.
var version = "dev"

// environment holds what the commands read from and write to.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newStore     func(*config.Config) (usermanager.AccountStore, error)
	readPassword func(prompt string) (string, error)

	log     *logger.Logger
	manager *usermanager.Manager
}

func newEnvironment() *environment {
	env := &environment{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		readPassword: promptPassword,
	}
	env.newStore = func(c *config.Config) (usermanager.AccountStore, error) {
		return usermanager.NewAccountStore(c.Store.Backend, c.Store.PowerShell, &commandmanager.LocalCommandManager{Logger: env.log})
	}
	return env
}

var (
	configFile     string
	debug          bool
	logFormat      string
	logFile        string
	eventLogSource string
	backend        string
	powershell     string
)

func newApp(env *environment) *cli.App {
	return &cli.App{
		Name:      filepath.Base(os.Args[0]),
		Usage:     "Desired State Configuration resource for local Windows users",
		Version:   version,
		Reader:    env.stdin,
		Writer:    env.stdout,
		ErrWriter: env.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to an INI configuration file",
				EnvVars:     []string{"WINUSER_CONFIG"},
				Destination: &configFile,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Enable debug log level",
				EnvVars:     []string{"WINUSER_DEBUG"},
				Destination: &debug,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format, text or json",
				EnvVars:     []string{"WINUSER_LOG_FORMAT"},
				Destination: &logFormat,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "Also write logs to this file, rotated",
				EnvVars:     []string{"WINUSER_LOG_FILE"},
				Destination: &logFile,
			},
			&cli.StringFlag{
				Name:        "event-log-source",
				Usage:       "Also write logs to the Windows event log under this source",
				EnvVars:     []string{"WINUSER_EVENT_LOG_SOURCE"},
				Destination: &eventLogSource,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "Account store backend, netapi or powershell",
				EnvVars:     []string{"WINUSER_BACKEND"},
				Destination: &backend,
			},
			&cli.StringFlag{
				Name:        "powershell",
				Usage:       "PowerShell executable used by the powershell backend",
				EnvVars:     []string{"WINUSER_POWERSHELL"},
				Destination: &powershell,
			},
		},
		Commands: []*cli.Command{
			newConfigCommand(env),
			newSchemaCommand(env),
			newManifestCommand(env),
		},
		Before: env.setup,
		After: func(*cli.Context) error {
			if env.log != nil {
				return env.log.Close()
			}
			return nil
		},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return cli.Exit(err, int(schema.ExitInvalidInput))
		},
		ExitErrHandler: func(_ *cli.Context, err error) {
			if err == nil {
				return
			}
			if env.log != nil {
				env.log.Error(err)
				return
			}
			l := logrus.New()
			l.SetOutput(env.stderr)
			l.Error(err)
		},
	}
}

// setup loads the configuration, applies flag overrides, and builds the
// logger and the account manager.
func (env *environment) setup(c *cli.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cli.Exit(err, int(schema.ExitInvalidInput))
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = logFormat
	}
	if c.IsSet("log-file") {
		cfg.Log.File = logFile
	}
	if c.IsSet("event-log-source") {
		cfg.Log.EventSource = eventLogSource
	}
	if c.IsSet("backend") {
		cfg.Store.Backend = backend
	}
	if c.IsSet("powershell") {
		cfg.Store.PowerShell = powershell
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, int(schema.ExitInvalidInput))
	}

	env.log, err = logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		EventSource: cfg.Log.EventSource,
		Output:      env.stderr,
	})
	if err != nil {
		return cli.Exit(err, int(schema.ExitInvalidInput))
	}

	store, err := env.newStore(cfg)
	if err != nil {
		return cli.Exit(err, int(schema.ExitInvalidInput))
	}
	env.manager = usermanager.NewManager(store, usermanager.WithLogger(env.log))
	return nil
}

// run executes the app and returns the process exit code.
func run(env *environment, args []string) int {
	err := newApp(env).Run(args)
	if err == nil {
		return int(schema.ExitSuccess)
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return int(schema.ExitUnexpected)
}
