package usermanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChanges(t *testing.T) {
	tests := []struct {
		name string
		user User
		want AccountChanges
	}{
		{
			name: "nothing present",
			user: User{UserName: "a"},
			want: AccountChanges{},
		},
		{
			name: "empty strings are skipped",
			user: User{UserName: "a", FullName: ptr(""), Description: ptr(""), Password: ptr("")},
			want: AccountChanges{},
		},
		{
			name: "disabled is inverted",
			user: User{UserName: "a", Disabled: ptr(true)},
			want: AccountChanges{Enabled: ptr(false)},
		},
		{
			name: "false booleans are applied",
			user: User{UserName: "a", PasswordNeverExpires: ptr(false), PasswordChangeNotAllowed: ptr(false)},
			want: AccountChanges{PasswordNeverExpires: ptr(false), UserCannotChangePassword: ptr(false)},
		},
		{
			name: "strings",
			user: User{UserName: "a", FullName: ptr("A"), Description: ptr("d"), Password: ptr("p")},
			want: AccountChanges{FullName: ptr("A"), Description: ptr("d"), Password: ptr("p")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Changes())
		})
	}
}

func TestChangesIgnoresReadOnlyFields(t *testing.T) {
	u := User{UserName: "a", Exist: ptr(false), PasswordChangeRequired: ptr(true)}
	assert.True(t, u.Changes().IsEmpty())
	assert.True(t, u.RequiresPasswordChange())
}

func TestUserFromAccount(t *testing.T) {
	set := time.Now()

	u := UserFromAccount(Account{
		Name:                     "pat",
		FullName:                 "Pat",
		Description:              "desc",
		Enabled:                  false,
		PasswordNeverExpires:     true,
		UserCannotChangePassword: true,
		PasswordLastSet:          &set,
	})

	assert.Equal(t, User{
		UserName:                 "pat",
		Exist:                    ptr(true),
		FullName:                 ptr("Pat"),
		Description:              ptr("desc"),
		Disabled:                 ptr(true),
		PasswordNeverExpires:     ptr(true),
		PasswordChangeRequired:   ptr(false),
		PasswordChangeNotAllowed: ptr(true),
	}, u)

	var zero time.Time
	assert.Equal(t, ptr(true), UserFromAccount(Account{Name: "x"}).PasswordChangeRequired)
	assert.Equal(t, ptr(true), UserFromAccount(Account{Name: "x", PasswordLastSet: &zero}).PasswordChangeRequired)
}
