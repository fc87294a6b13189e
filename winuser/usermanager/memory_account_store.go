package usermanager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryAccountStore keeps accounts in memory. Names are matched
// case-insensitively like the Windows account database.
type MemoryAccountStore struct {
	sync.RWMutex
	accounts  map[string]*Account
	passwords map[string]string
	now       func() time.Time
}

// NewMemoryAccountStore creates a store holding the given accounts.
func NewMemoryAccountStore(accounts ...Account) *MemoryAccountStore {
	s := &MemoryAccountStore{
		accounts:  make(map[string]*Account),
		passwords: make(map[string]string),
		now:       time.Now,
	}
	for _, a := range accounts {
		a := a
		s.accounts[key(a.Name)] = &a
	}
	return s
}

func (s *MemoryAccountStore) Open(ctx context.Context) (Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryDirectory{store: s}, nil
}

// Password returns the password last set for the account.
func (s *MemoryAccountStore) Password(name string) (string, bool) {
	s.RLock()
	defer s.RUnlock()
	p, ok := s.passwords[key(name)]
	return p, ok
}

type memoryDirectory struct {
	store  *MemoryAccountStore
	closed bool
}

func (d *memoryDirectory) Find(name string) (Account, error) {
	if d.closed {
		return Account{}, errClosed
	}
	d.store.RLock()
	defer d.store.RUnlock()

	a, ok := d.store.accounts[key(name)]
	if !ok {
		return Account{}, ErrNotFound
	}
	return *a, nil
}

func (d *memoryDirectory) Create(name string, changes AccountChanges) error {
	if d.closed {
		return errClosed
	}
	d.store.Lock()
	defer d.store.Unlock()

	if _, ok := d.store.accounts[key(name)]; ok {
		return fmt.Errorf("the account %s already exists", name)
	}
	a := &Account{Name: name, Enabled: true}
	d.store.apply(a, changes)
	d.store.accounts[key(name)] = a
	return nil
}

func (d *memoryDirectory) Update(name string, changes AccountChanges) error {
	if d.closed {
		return errClosed
	}
	d.store.Lock()
	defer d.store.Unlock()

	a, ok := d.store.accounts[key(name)]
	if !ok {
		return ErrNotFound
	}
	d.store.apply(a, changes)
	return nil
}

func (d *memoryDirectory) ExpirePassword(name string) error {
	if d.closed {
		return errClosed
	}
	d.store.Lock()
	defer d.store.Unlock()

	a, ok := d.store.accounts[key(name)]
	if !ok {
		return ErrNotFound
	}
	a.PasswordLastSet = nil
	return nil
}

func (d *memoryDirectory) Delete(name string) error {
	if d.closed {
		return errClosed
	}
	d.store.Lock()
	defer d.store.Unlock()

	if _, ok := d.store.accounts[key(name)]; !ok {
		return ErrNotFound
	}
	delete(d.store.accounts, key(name))
	delete(d.store.passwords, key(name))
	return nil
}

func (d *memoryDirectory) List() ([]string, error) {
	if d.closed {
		return nil, errClosed
	}
	d.store.RLock()
	defer d.store.RUnlock()

	names := make([]string, 0, len(d.store.accounts))
	for _, a := range d.store.accounts {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *memoryDirectory) Close() error {
	d.closed = true
	return nil
}

// apply must be called with the lock held.
func (s *MemoryAccountStore) apply(a *Account, c AccountChanges) {
	if c.FullName != nil {
		a.FullName = *c.FullName
	}
	if c.Description != nil {
		a.Description = *c.Description
	}
	if c.Password != nil {
		s.passwords[key(a.Name)] = *c.Password
		now := s.now()
		a.PasswordLastSet = &now
	}
	if c.Enabled != nil {
		a.Enabled = *c.Enabled
	}
	if c.PasswordNeverExpires != nil {
		a.PasswordNeverExpires = *c.PasswordNeverExpires
	}
	if c.UserCannotChangePassword != nil {
		a.UserCannotChangePassword = *c.UserCannotChangePassword
	}
}

func key(name string) string {
	return strings.ToLower(name)
}
