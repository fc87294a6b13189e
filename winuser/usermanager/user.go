package usermanager

// UserFromAccount projects a store record onto a descriptor. Password is
// never reported.
func UserFromAccount(a Account) User {
	return User{
		UserName:                 a.Name,
		Exist:                    ptr(true),
		FullName:                 ptr(a.FullName),
		Description:              ptr(a.Description),
		Disabled:                 ptr(!a.Enabled),
		PasswordNeverExpires:     ptr(a.PasswordNeverExpires),
		PasswordChangeNotAllowed: ptr(a.UserCannotChangePassword),
		PasswordChangeRequired:   ptr(a.PasswordLastSet == nil || a.PasswordLastSet.IsZero()),
	}
}

// Changes returns the writes a descriptor asks for. Strings count only when
// non-empty, booleans whenever they are present.
func (u User) Changes() AccountChanges {
	var c AccountChanges
	if nonEmpty(u.FullName) {
		c.FullName = u.FullName
	}
	if nonEmpty(u.Description) {
		c.Description = u.Description
	}
	if nonEmpty(u.Password) {
		c.Password = u.Password
	}
	if u.Disabled != nil {
		c.Enabled = ptr(!*u.Disabled)
	}
	c.PasswordNeverExpires = u.PasswordNeverExpires
	c.UserCannotChangePassword = u.PasswordChangeNotAllowed
	return c
}

// RequiresPasswordChange reports whether the password must be expired after
// the account is written.
func (u User) RequiresPasswordChange() bool {
	return u.PasswordChangeRequired != nil && *u.PasswordChangeRequired
}

// IsEmpty reports whether no change is requested.
func (c AccountChanges) IsEmpty() bool {
	return c == (AccountChanges{})
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

func ptr[T any](v T) *T {
	return &v
}
