package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/steelcutops/winuser/winuser/schema"
	"github.com/steelcutops/winuser/winuser/usermanager"
)

var (
	inputFlag = &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Resource instance as JSON; read from stdin when omitted",
	}
	whatIfFlag = &cli.BoolFlag{
		Name:    "what-if",
		Aliases: []string{"w"},
		Usage:   "Report the outcome without changing the system",
	}
	promptPasswordFlag = &cli.BoolFlag{
		Name:  "prompt-password",
		Usage: "Prompt for the password when the instance does not carry one",
	}
)

func newConfigCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Get, set, delete, or export local users",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Retrieve the current state of a user",
				Flags:  []cli.Flag{inputFlag},
				Action: env.get,
			},
			{
				Name:   "set",
				Usage:  "Create or update a user",
				Flags:  []cli.Flag{inputFlag, whatIfFlag, promptPasswordFlag},
				Action: env.set,
			},
			{
				Name:   "delete",
				Usage:  "Delete a user",
				Flags:  []cli.Flag{inputFlag, whatIfFlag},
				Action: env.delete,
			},
			{
				Name:   "export",
				Usage:  "Retrieve all local users",
				Action: env.export,
			},
		},
	}
}

func (env *environment) get(c *cli.Context) error {
	user, err := env.readInput(c)
	if err != nil {
		return exit("get", err)
	}

	current, err := env.manager.Get(c.Context, user.UserName)
	if err != nil {
		return exit("get", err)
	}
	return exit("get", env.write(current))
}

func (env *environment) set(c *cli.Context) error {
	user, err := env.readInput(c)
	if err != nil {
		return exit("set", err)
	}

	if c.Bool("prompt-password") && user.Password == nil {
		password, err := env.readPassword(fmt.Sprintf("Password for '%s': ", user.UserName))
		if err != nil {
			return exit("set", err)
		}
		user.Password = &password
	}

	var result usermanager.User
	if c.Bool("what-if") {
		current, err := env.manager.Get(c.Context, user.UserName)
		if err != nil {
			return exit("set", err)
		}
		result = predict(current, user)
		env.log.WithField("user", user.UserName).Infof("What if: setting user '%s'", user.UserName)
	} else {
		result, err = env.manager.Set(c.Context, user)
		if err != nil {
			return exit("set", err)
		}
		exist := true
		result.Exist = &exist
		env.log.WithField("user", user.UserName).Infof("Set user '%s'", user.UserName)
	}
	return exit("set", env.write(result))
}

func (env *environment) delete(c *cli.Context) error {
	user, err := env.readInput(c)
	if err != nil {
		return exit("delete", err)
	}

	if err := env.manager.Available(c.Context); err != nil {
		return exit("delete", err)
	}

	log := env.log.WithField("user", user.UserName)
	if !env.manager.Exists(c.Context, user.UserName) {
		log.Infof("User '%s' does not exist, nothing to delete", user.UserName)
		return nil
	}
	if c.Bool("what-if") {
		log.Infof("What if: deleting user '%s'", user.UserName)
		return nil
	}

	if err := env.manager.Delete(c.Context, user.UserName); err != nil {
		return exit("delete", err)
	}
	log.Infof("Deleted user '%s'", user.UserName)
	return nil
}

func (env *environment) export(c *cli.Context) error {
	users, err := env.manager.Export(c.Context)
	for _, user := range users {
		if werr := env.write(user); werr != nil {
			return exit("export", werr)
		}
	}
	env.log.Infof("Exported %d users", len(users))
	return exit("export", err)
}

// readInput decodes the instance from --input or, without it, from stdin.
func (env *environment) readInput(c *cli.Context) (usermanager.User, error) {
	if c.IsSet("input") {
		return schema.Decode([]byte(c.String("input")))
	}
	data, err := io.ReadAll(env.stdin)
	if err != nil {
		return usermanager.User{}, fmt.Errorf("%w: %v", schema.ErrInvalidInput, err)
	}
	return schema.Decode(data)
}

// write prints one instance as a line of JSON.
func (env *environment) write(user usermanager.User) error {
	return json.NewEncoder(env.stdout).Encode(user)
}

// predict returns the state a set of desired would leave on top of current.
func predict(current, desired usermanager.User) usermanager.User {
	result := current
	result.UserName = desired.UserName
	if desired.FullName != nil && *desired.FullName != "" {
		result.FullName = desired.FullName
	}
	if desired.Description != nil && *desired.Description != "" {
		result.Description = desired.Description
	}
	if desired.Disabled != nil {
		result.Disabled = desired.Disabled
	}
	if desired.PasswordNeverExpires != nil {
		result.PasswordNeverExpires = desired.PasswordNeverExpires
	}
	if desired.PasswordChangeNotAllowed != nil {
		result.PasswordChangeNotAllowed = desired.PasswordChangeNotAllowed
	}
	switch {
	case desired.RequiresPasswordChange():
		result.PasswordChangeRequired = desired.PasswordChangeRequired
	case desired.Password != nil && *desired.Password != "":
		// A new password resets the last-set time.
		changeRequired := false
		result.PasswordChangeRequired = &changeRequired
	}
	result.Password = nil
	exist := true
	result.Exist = &exist
	return result
}

// exit attaches the exit code of operation to err.
func exit(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err, int(schema.ExitCodeFor(operation, err)))
}
