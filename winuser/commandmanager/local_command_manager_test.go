package commandmanager

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLocal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
	manager := LocalCommandManager{}

	result, err := manager.Run(context.Background(), CommandConfig{
		Command: "echo",
		Args:    []string{"hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.STDOUT)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "echo", result.Command)
}

func TestRunLocalStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
	manager := LocalCommandManager{}

	result, err := manager.Run(context.Background(), CommandConfig{
		Command: "cat",
		Stdin:   "secret\n",
	})

	require.NoError(t, err)
	assert.Equal(t, "secret\n", result.STDOUT)
}

func TestRunLocalExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
	manager := LocalCommandManager{}

	result, err := manager.Run(context.Background(), CommandConfig{
		Command: "sh",
		Args:    []string{"-c", "echo broken >&2; exit 3"},
	})

	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, err.Error(), "broken")

	var exitError *exec.ExitError
	assert.True(t, errors.As(err, &exitError))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, 0, getExitCode(nil))
	assert.Equal(t, -1, getExitCode(errors.New("not started")))
}
