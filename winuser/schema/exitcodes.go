package schema

import (
	"errors"
	"strconv"

	"github.com/steelcutops/winuser/winuser/usermanager"
)

// ExitCode is a process exit status reported to the DSC host.
type ExitCode int

const (
	ExitSuccess      ExitCode = 0
	ExitUnexpected   ExitCode = 1
	ExitInvalidInput ExitCode = 2
	ExitNotFound     ExitCode = 3
	ExitGetFailed    ExitCode = 4
	ExitSetFailed    ExitCode = 5
	ExitDeleteFailed ExitCode = 6
	ExitExportFailed ExitCode = 7
)

var exitCodeDescriptions = map[ExitCode]string{
	ExitSuccess:      "Success",
	ExitUnexpected:   "Unexpected error",
	ExitInvalidInput: "Invalid input",
	ExitNotFound:     "User not found",
	ExitGetFailed:    "Failed to get user",
	ExitSetFailed:    "Failed to create or update user",
	ExitDeleteFailed: "Failed to delete user",
	ExitExportFailed: "Failed to export users",
}

func (c ExitCode) String() string {
	if d, ok := exitCodeDescriptions[c]; ok {
		return d
	}
	return "exit code " + strconv.Itoa(int(c))
}

// ExitCodes returns the table declared in the manifest.
func ExitCodes() map[string]string {
	codes := make(map[string]string, len(exitCodeDescriptions))
	for c, d := range exitCodeDescriptions {
		codes[strconv.Itoa(int(c))] = d
	}
	return codes
}

// ExitCodeFor maps an error from the given operation (get, set, delete or
// export) to its exit code.
func ExitCodeFor(operation string, err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrInvalidInput) {
		return ExitInvalidInput
	}
	if operation != "export" && usermanager.KindOf(err) == usermanager.KindNotFound {
		return ExitNotFound
	}
	switch operation {
	case "get":
		return ExitGetFailed
	case "set":
		return ExitSetFailed
	case "delete":
		return ExitDeleteFailed
	case "export":
		return ExitExportFailed
	}
	return ExitUnexpected
}
