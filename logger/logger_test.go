package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Debug("hidden")
	l.WithField("user", "alice").Info("Creating user")

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg="Creating user" user=alice`)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.WithField("user", "bob").Debug("Deleting user")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Deleting user", entry["msg"])
	assert.Equal(t, "bob", entry["user"])
}

func TestNewInvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.EqualError(t, err, `unknown log format "xml"`)
}

func TestNewWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "winuser.log")

	l, err := New(Options{File: path, Output: &buf})
	require.NoError(t, err)

	l.Warn("written twice")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}

func TestNewEventLogUnavailable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("event log is available on windows")
	}
	_, err := New(Options{EventSource: "winuser"})
	assert.Error(t, err)
}
