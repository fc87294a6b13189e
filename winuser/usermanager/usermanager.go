package usermanager

import (
	"context"
	"time"
)

// User is the declarative description of a local account. Optional fields
// are pointers: nil means the field was not given and is left untouched on
// write, or is not reported on read.
type User struct {
	UserName                 string  `json:"userName" jsonschema:"minLength=1" jsonschema_description:"The logon name of the local account."`
	FullName                 *string `json:"fullName,omitempty" jsonschema_description:"The display name of the account."`
	Description              *string `json:"description,omitempty" jsonschema_description:"Free text describing the account."`
	Password                 *string `json:"password,omitempty" jsonschema:"writeOnly=true" jsonschema_description:"Sets or resets the password. Never returned."`
	Disabled                 *bool   `json:"disabled,omitempty" jsonschema_description:"Whether the account is disabled."`
	PasswordNeverExpires     *bool   `json:"passwordNeverExpires,omitempty" jsonschema_description:"Whether the password never expires."`
	PasswordChangeRequired   *bool   `json:"passwordChangeRequired,omitempty" jsonschema_description:"When true the password must be changed at next logon."`
	PasswordChangeNotAllowed *bool   `json:"passwordChangeNotAllowed,omitempty" jsonschema_description:"Whether the user is prevented from changing the password."`
	Exist                    *bool   `json:"_exist,omitempty" jsonschema_description:"Whether the account exists."`
}

// Account is the state of an account as the store reports it.
type Account struct {
	Name                     string
	FullName                 string
	Description              string
	Enabled                  bool
	PasswordNeverExpires     bool
	UserCannotChangePassword bool
	PasswordLastSet          *time.Time // nil when never set or expired
}

// AccountChanges is a sparse set of writes. Nil fields are not touched.
type AccountChanges struct {
	FullName                 *string
	Description              *string
	Password                 *string
	Enabled                  *bool
	PasswordNeverExpires     *bool
	UserCannotChangePassword *bool
}

// AccountStore opens directory contexts on the local account database.
type AccountStore interface {
	// Opens a directory context; the caller must Close it
	Open(ctx context.Context) (Directory, error)
}

// Directory is a directory context scoped to a single operation.
type Directory interface {
	// Resolves an account by name, ErrNotFound when it does not exist
	Find(name string) (Account, error)

	// Creates and persists a new account with the given changes applied
	Create(name string, changes AccountChanges) error

	// Applies changes to an existing account and persists them
	Update(name string, changes AccountChanges) error

	// Forces the password to be changed at next logon
	ExpirePassword(name string) error

	// Deletes an account
	Delete(name string) error

	// Lists the names of all local accounts
	List() ([]string, error)

	// Releases the context
	Close() error
}
