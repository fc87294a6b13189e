package usermanager

import (
	"fmt"

	cm "github.com/steelcutops/winuser/winuser/commandmanager"
)

const (
	BackendNetAPI     = "netapi"
	BackendPowerShell = "powershell"
)

// NewAccountStore returns the store for the named backend. An empty name
// selects netapi.
func NewAccountStore(backend, powershell string, commandManager cm.CommandManager) (AccountStore, error) {
	switch backend {
	case "", BackendNetAPI:
		return &NetAPIAccountStore{}, nil
	case BackendPowerShell:
		if commandManager == nil {
			commandManager = &cm.LocalCommandManager{}
		}
		return &PowerShellAccountStore{CommandManager: commandManager, Executable: powershell}, nil
	default:
		return nil, fmt.Errorf("unsupported account store backend: %s", backend)
	}
}
