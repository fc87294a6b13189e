package commandmanager

import (
	"context"
	"time"
)

type CommandConfig struct {
	Command string
	Args    []string
	Stdin   string // written to the process before it is waited on
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager executes commands on the local system.
type CommandManager interface {
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)
}
