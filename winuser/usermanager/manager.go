package usermanager

import (
	"context"
	"errors"
	"iter"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Manager reads and writes local accounts through an AccountStore. Every
// operation opens its own directory context and closes it before returning.
type Manager struct {
	Store  AccountStore
	Logger logrus.FieldLogger
}

type ManagerOption func(*Manager)

// WithLogger returns a ManagerOption that sets the logger for a Manager.
func WithLogger(logger logrus.FieldLogger) ManagerOption {
	return func(m *Manager) {
		m.Logger = logger
	}
}

func NewManager(store AccountStore, options ...ManagerOption) *Manager {
	m := &Manager{Store: store, Logger: logrus.StandardLogger()}
	for _, option := range options {
		option(m)
	}
	return m
}

// Exists reports whether the account is present. A failed lookup is logged
// and reported as absent.
func (m *Manager) Exists(ctx context.Context, userName string) bool {
	dir, err := m.Store.Open(ctx)
	if err != nil {
		m.log(userName).WithError(err).Warn("Unable to open account directory, treating user as absent")
		return false
	}
	defer m.close(dir)

	return m.exists(dir, userName)
}

// Available reports whether the account directory can be opened at all. It
// separates an unusable store, such as an unsupported platform, from an
// absent account.
func (m *Manager) Available(ctx context.Context) error {
	dir, err := m.Store.Open(ctx)
	if err != nil {
		return newError("open", "", err)
	}
	m.close(dir)
	return nil
}

func (m *Manager) exists(dir Directory, userName string) bool {
	_, err := dir.Find(userName)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrNotFound) {
		m.log(userName).WithError(err).Warn("User lookup failed, treating user as absent")
	}
	return false
}

// Get returns the current state of the account. A missing account is not an
// error: the result only carries the name and Exist=false.
func (m *Manager) Get(ctx context.Context, userName string) (User, error) {
	dir, err := m.Store.Open(ctx)
	if err != nil {
		return User{}, lookupError("retrieve", userName, err)
	}
	defer m.close(dir)

	return m.get(dir, userName)
}

func (m *Manager) get(dir Directory, userName string) (User, error) {
	account, err := dir.Find(userName)
	if errors.Is(err, ErrNotFound) {
		return User{UserName: userName, Exist: ptr(false)}, nil
	}
	if err != nil {
		return User{}, lookupError("retrieve", userName, err)
	}

	user := UserFromAccount(account)
	user.UserName = userName
	return user, nil
}

// Set creates the account when it is absent and updates it otherwise. Only
// the fields present in user are written. The returned descriptor is user
// without its password.
func (m *Manager) Set(ctx context.Context, user User) (User, error) {
	dir, err := m.Store.Open(ctx)
	if err != nil {
		return User{}, newError("set", user.UserName, err)
	}
	defer m.close(dir)

	if m.exists(dir, user.UserName) {
		m.log(user.UserName).Debugf("Updating user '%s'", user.UserName)
		err = m.update(dir, user)
	} else {
		m.log(user.UserName).Debugf("Creating user '%s'", user.UserName)
		err = m.create(dir, user)
	}
	if err != nil {
		return User{}, err
	}

	user.Password = nil
	return user, nil
}

func (m *Manager) create(dir Directory, user User) error {
	if err := dir.Create(user.UserName, user.Changes()); err != nil {
		return newError("create", user.UserName, err)
	}
	if user.RequiresPasswordChange() {
		if err := dir.ExpirePassword(user.UserName); err != nil {
			return newError("create", user.UserName, err)
		}
	}
	return nil
}

func (m *Manager) update(dir Directory, user User) error {
	// The account may have gone away since the existence check.
	if _, err := dir.Find(user.UserName); err != nil {
		return newError("update", user.UserName, err)
	}

	if changes := user.Changes(); !changes.IsEmpty() {
		if err := dir.Update(user.UserName, changes); err != nil {
			return newError("update", user.UserName, err)
		}
	}
	if user.RequiresPasswordChange() {
		if err := dir.ExpirePassword(user.UserName); err != nil {
			return newError("update", user.UserName, err)
		}
	}
	return nil
}

// Delete removes the account. It fails with ErrNotFound when the account
// does not exist; callers that want a no-op should check Exists first.
func (m *Manager) Delete(ctx context.Context, userName string) error {
	dir, err := m.Store.Open(ctx)
	if err != nil {
		return newError("delete", userName, err)
	}
	defer m.close(dir)

	if _, err := dir.Find(userName); err != nil {
		return newError("delete", userName, err)
	}

	m.log(userName).Debugf("Deleting user '%s'", userName)
	if err := dir.Delete(userName); err != nil {
		return newError("delete", userName, err)
	}
	return nil
}

// All yields one descriptor per local account in the order the store lists
// them. Accounts that disappear while enumerating are skipped.
func (m *Manager) All(ctx context.Context) iter.Seq2[User, error] {
	return func(yield func(User, error) bool) {
		dir, err := m.Store.Open(ctx)
		if err != nil {
			yield(User{}, newError("enumerate", "", err))
			return
		}
		defer m.close(dir)

		names, err := dir.List()
		if err != nil {
			yield(User{}, newError("enumerate", "", err))
			return
		}

		for _, name := range names {
			user, err := m.get(dir, name)
			if err == nil && user.Exist != nil && !*user.Exist {
				continue
			}
			if !yield(user, err) {
				return
			}
		}
	}
}

// Export collects every account. Accounts that could not be read are left
// out and their errors are returned together.
func (m *Manager) Export(ctx context.Context) ([]User, error) {
	var (
		users  []User
		result *multierror.Error
	)
	for user, err := range m.All(ctx) {
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		users = append(users, user)
	}
	return users, result.ErrorOrNil()
}

func (m *Manager) close(dir Directory) {
	if err := dir.Close(); err != nil {
		m.Logger.WithError(err).Warn("Failed to release account directory")
	}
}

func (m *Manager) log(userName string) logrus.FieldLogger {
	return m.Logger.WithField("user", userName)
}

func lookupError(op, userName string, err error) *Error {
	e := newError(op, userName, err)
	if e.Kind == KindOperationFailure {
		e.Kind = KindLookupFailure
	}
	return e
}
