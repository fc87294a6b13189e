package usermanager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	cm "github.com/steelcutops/winuser/winuser/commandmanager"
)

// notFoundExitCode is what the scripts exit with when the account is missing.
const notFoundExitCode = 3

// stdinLoader runs stdin as one script block so multi-line statements and
// terminating errors behave as in a script file.
const stdinLoader = "& ([scriptblock]::Create([Console]::In.ReadToEnd()))"

// PowerShellAccountStore drives the Microsoft.PowerShell.LocalAccounts
// cmdlets. Scripts, including passwords, are passed on stdin so they never
// show up in the process list.
type PowerShellAccountStore struct {
	CommandManager cm.CommandManager
	Executable     string
}

func (p *PowerShellAccountStore) Open(ctx context.Context) (Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exe := p.Executable
	if exe == "" {
		exe = "powershell.exe"
	}
	return &powerShellDirectory{ctx: ctx, commandManager: p.CommandManager, executable: exe}, nil
}

type powerShellDirectory struct {
	ctx            context.Context
	commandManager cm.CommandManager
	executable     string
}

type powerShellAccount struct {
	Name                  string  `json:"Name"`
	FullName              string  `json:"FullName"`
	Description           string  `json:"Description"`
	Enabled               bool    `json:"Enabled"`
	PasswordNeverExpires  bool    `json:"PasswordNeverExpires"`
	UserMayChangePassword bool    `json:"UserMayChangePassword"`
	PasswordLastSet       *string `json:"PasswordLastSet"`
}

const findScript = `try { $u = Get-LocalUser -Name %[1]s } catch [Microsoft.PowerShell.Commands.UserNotFoundException] { exit %[2]d }
$flags = [int]([ADSI]"WinNT://$env:COMPUTERNAME/$($u.Name),user").UserFlags.Value
$set = $null
if ($u.PasswordLastSet) { $set = $u.PasswordLastSet.ToUniversalTime().ToString('o') }
[pscustomobject]@{
  Name = $u.Name
  FullName = [string]$u.FullName
  Description = [string]$u.Description
  Enabled = [bool]$u.Enabled
  PasswordNeverExpires = [bool]($flags -band 0x10000)
  UserMayChangePassword = [bool]$u.UserMayChangePassword
  PasswordLastSet = $set
} | ConvertTo-Json -Compress`

func (d *powerShellDirectory) Find(name string) (Account, error) {
	out, err := d.run(fmt.Sprintf(findScript, quote(name), notFoundExitCode))
	if err != nil {
		return Account{}, err
	}

	var pa powerShellAccount
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &pa); err != nil {
		return Account{}, errors.Wrapf(err, "unexpected Get-LocalUser output for %s", name)
	}

	account := Account{
		Name:                     pa.Name,
		FullName:                 pa.FullName,
		Description:              pa.Description,
		Enabled:                  pa.Enabled,
		PasswordNeverExpires:     pa.PasswordNeverExpires,
		UserCannotChangePassword: !pa.UserMayChangePassword,
	}
	if pa.PasswordLastSet != nil {
		t, err := time.Parse(time.RFC3339Nano, *pa.PasswordLastSet)
		if err != nil {
			return Account{}, errors.Wrapf(err, "invalid PasswordLastSet for %s", name)
		}
		account.PasswordLastSet = &t
	}
	return account, nil
}

func (d *powerShellDirectory) Create(name string, changes AccountChanges) error {
	var b strings.Builder
	b.WriteString("New-LocalUser -Name " + quote(name))
	if changes.FullName != nil {
		b.WriteString(" -FullName " + quote(*changes.FullName))
	}
	if changes.Description != nil {
		b.WriteString(" -Description " + quote(*changes.Description))
	}
	if changes.Password != nil {
		b.WriteString(" -Password " + secureString(*changes.Password))
	} else {
		b.WriteString(" -NoPassword")
	}
	if changes.Enabled != nil && !*changes.Enabled {
		b.WriteString(" -Disabled")
	}
	if changes.PasswordNeverExpires != nil && *changes.PasswordNeverExpires {
		b.WriteString(" -PasswordNeverExpires")
	}
	if changes.UserCannotChangePassword != nil && *changes.UserCannotChangePassword {
		b.WriteString(" -UserMayNotChangePassword")
	}
	b.WriteString(" | Out-Null")

	_, err := d.run(b.String())
	return errors.Wrap(err, "New-LocalUser")
}

func (d *powerShellDirectory) Update(name string, changes AccountChanges) error {
	var lines []string

	var set strings.Builder
	if changes.FullName != nil {
		set.WriteString(" -FullName " + quote(*changes.FullName))
	}
	if changes.Description != nil {
		set.WriteString(" -Description " + quote(*changes.Description))
	}
	if changes.Password != nil {
		set.WriteString(" -Password " + secureString(*changes.Password))
	}
	if changes.PasswordNeverExpires != nil {
		set.WriteString(" -PasswordNeverExpires " + boolean(*changes.PasswordNeverExpires))
	}
	if changes.UserCannotChangePassword != nil {
		set.WriteString(" -UserMayChangePassword " + boolean(!*changes.UserCannotChangePassword))
	}
	if set.Len() > 0 {
		lines = append(lines, "Set-LocalUser -Name "+quote(name)+set.String())
	}

	if changes.Enabled != nil {
		if *changes.Enabled {
			lines = append(lines, "Enable-LocalUser -Name "+quote(name))
		} else {
			lines = append(lines, "Disable-LocalUser -Name "+quote(name))
		}
	}
	if len(lines) == 0 {
		return nil
	}

	_, err := d.run(strings.Join(lines, "\n"))
	return errors.Wrap(err, "Set-LocalUser")
}

const expireScript = `$a = [ADSI]"WinNT://$env:COMPUTERNAME/$(%s),user"
$a.PasswordExpired = 1
$a.SetInfo()`

func (d *powerShellDirectory) ExpirePassword(name string) error {
	_, err := d.run(fmt.Sprintf(expireScript, quote(name)))
	return errors.Wrap(err, "expire password")
}

func (d *powerShellDirectory) Delete(name string) error {
	_, err := d.run("Remove-LocalUser -Name " + quote(name))
	return errors.Wrap(err, "Remove-LocalUser")
}

func (d *powerShellDirectory) List() ([]string, error) {
	out, err := d.run("Get-LocalUser | ForEach-Object { $_.Name }")
	if err != nil {
		return nil, errors.Wrap(err, "Get-LocalUser")
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (d *powerShellDirectory) Close() error {
	return nil
}

func (d *powerShellDirectory) run(script string) (string, error) {
	result, err := d.commandManager.Run(d.ctx, cm.CommandConfig{
		Command: d.executable,
		Args:    []string{"-NoProfile", "-NonInteractive", "-Command", stdinLoader},
		Stdin:   "$ErrorActionPreference = 'Stop'\n" + script + "\n",
	})
	if result.ExitCode == notFoundExitCode {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return result.STDOUT, nil
}

// quote renders s as a single-quoted PowerShell literal. PowerShell also
// accepts the typographic single quotes as delimiters.
func quote(s string) string {
	r := strings.NewReplacer("'", "''", "‘", "‘‘", "’", "’’", "‚", "‚‚", "‛", "‛‛")
	return "'" + r.Replace(s) + "'"
}

func secureString(s string) string {
	return "(ConvertTo-SecureString " + quote(s) + " -AsPlainText -Force)"
}

func boolean(b bool) string {
	if b {
		return "$true"
	}
	return "$false"
}
