package commandmanager

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type LocalCommandManager struct {
	Logger logrus.FieldLogger
}

func (l *LocalCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	if config.Stdin != "" {
		cmd.Stdin = strings.NewReader(config.Stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	l.logger().WithField("command", config.Command).Debug("Running local command")
	err := cmd.Run()

	result := CommandResult{
		Command:   config.Command,
		STDOUT:    stdout.String(),
		STDERR:    stderr.String(),
		ExitCode:  getExitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		if msg := strings.TrimSpace(result.STDERR); msg != "" {
			return result, fmt.Errorf("%s: %w: %s", config.Command, err, msg)
		}
		return result, fmt.Errorf("%s: %w", config.Command, err)
	}
	return result, nil
}

func (l *LocalCommandManager) logger() logrus.FieldLogger {
	if l.Logger == nil {
		return logrus.StandardLogger()
	}
	return l.Logger
}

func getExitCode(err error) int {
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
