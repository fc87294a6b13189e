//go:build windows && amd64

package usermanager

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	wapi "github.com/iamacarpet/go-win64api"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	modNetapi32        = windows.NewLazySystemDLL("netapi32.dll")
	procNetUserAdd     = modNetapi32.NewProc("NetUserAdd")
	procNetUserSetInfo = modNetapi32.NewProc("NetUserSetInfo")
)

// userInfo3 mirrors USER_INFO_3 from lmaccess.h.
type userInfo3 struct {
	Name            *uint16
	Password        *uint16
	PasswordAge     uint32
	Priv            uint32
	HomeDir         *uint16
	Comment         *uint16
	Flags           uint32
	ScriptPath      *uint16
	AuthFlags       uint32
	FullName        *uint16
	UsrComment      *uint16
	Parms           *uint16
	Workstations    *uint16
	LastLogon       uint32
	LastLogoff      uint32
	AcctExpires     uint32
	MaxStorage      uint32
	UnitsPerWeek    uint32
	LogonHours      *byte
	BadPwCount      uint32
	NumLogons       uint32
	LogonServer     *uint16
	CountryCode     uint32
	CodePage        uint32
	UserID          uint32
	PrimaryGroupID  uint32
	Profile         *uint16
	HomeDirDrive    *uint16
	PasswordExpired uint32
}

// userInfo1007 mirrors USER_INFO_1007, the account comment.
type userInfo1007 struct {
	Comment *uint16
}

// NetAPIAccountStore manages accounts in the local SAM database through
// netapi32.
type NetAPIAccountStore struct{}

func (s *NetAPIAccountStore) Open(ctx context.Context) (Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &netAPIDirectory{}, nil
}

type netAPIDirectory struct{}

func (d *netAPIDirectory) Find(name string) (Account, error) {
	var account Account
	err := withUserInfo3(name, func(info *userInfo3) error {
		account = Account{
			Name:                     windows.UTF16PtrToString(info.Name),
			FullName:                 windows.UTF16PtrToString(info.FullName),
			Description:              windows.UTF16PtrToString(info.Comment),
			Enabled:                  info.Flags&wapi.USER_UF_ACCOUNTDISABLE == 0,
			PasswordNeverExpires:     info.Flags&wapi.USER_UF_DONT_EXPIRE_PASSWD != 0,
			UserCannotChangePassword: info.Flags&wapi.USER_UF_PASSWD_CANT_CHANGE != 0,
		}
		if info.PasswordExpired == 0 {
			set := time.Now().Add(-time.Duration(info.PasswordAge) * time.Second)
			account.PasswordLastSet = &set
		}
		return nil
	})
	return account, err
}

func (d *netAPIDirectory) Create(name string, changes AccountChanges) error {
	info := wapi.USER_INFO_1{
		Usri1_priv:  wapi.USER_PRIV_USER,
		Usri1_flags: applyFlags(wapi.USER_UF_SCRIPT|wapi.USER_UF_NORMAL_ACCOUNT, changes),
	}
	var err error
	if info.Usri1_name, err = windows.UTF16PtrFromString(name); err != nil {
		return errors.Wrap(err, "encode user name")
	}
	if changes.Password != nil {
		if info.Usri1_password, err = windows.UTF16PtrFromString(*changes.Password); err != nil {
			return errors.Wrap(err, "encode password")
		}
	}
	if changes.Description != nil {
		if info.Usri1_comment, err = windows.UTF16PtrFromString(*changes.Description); err != nil {
			return errors.Wrap(err, "encode description")
		}
	}

	var parmErr uint32
	ret, _, _ := procNetUserAdd.Call(
		uintptr(0),
		uintptr(uint32(1)),
		uintptr(unsafe.Pointer(&info)),
		uintptr(unsafe.Pointer(&parmErr)),
	)
	if ret != wapi.NET_API_STATUS_NERR_Success {
		return errors.Wrapf(netAPIError(ret), "NetUserAdd (parameter %d)", parmErr)
	}

	if changes.FullName != nil {
		if _, err := wapi.UserUpdateFullname(name, *changes.FullName); err != nil {
			return errors.Wrap(err, "set full name")
		}
	}
	return nil
}

func (d *netAPIDirectory) Update(name string, changes AccountChanges) error {
	if changes.FullName != nil {
		if _, err := wapi.UserUpdateFullname(name, *changes.FullName); err != nil {
			return errors.Wrap(err, "set full name")
		}
	}
	if changes.Description != nil {
		comment, err := windows.UTF16PtrFromString(*changes.Description)
		if err != nil {
			return errors.Wrap(err, "encode description")
		}
		if err := setUserInfo(name, 1007, unsafe.Pointer(&userInfo1007{Comment: comment})); err != nil {
			return errors.Wrap(err, "set description")
		}
	}
	if changes.Password != nil {
		if _, err := wapi.ChangePassword(name, *changes.Password); err != nil {
			return errors.Wrap(err, "set password")
		}
	}
	if changes.Enabled == nil && changes.PasswordNeverExpires == nil && changes.UserCannotChangePassword == nil {
		return nil
	}

	var flags uint32
	if err := withUserInfo3(name, func(info *userInfo3) error {
		flags = info.Flags
		return nil
	}); err != nil {
		return err
	}
	if err := setUserInfo(name, 1008, unsafe.Pointer(&wapi.USER_INFO_1008{Usri1008_flags: applyFlags(flags, changes)})); err != nil {
		return errors.Wrap(err, "set account flags")
	}
	return nil
}

func (d *netAPIDirectory) ExpirePassword(name string) error {
	return withUserInfo3(name, func(info *userInfo3) error {
		info.Password = nil
		info.PasswordExpired = 1
		return errors.Wrap(setUserInfo(name, 3, unsafe.Pointer(info)), "expire password")
	})
}

func (d *netAPIDirectory) Delete(name string) error {
	if _, err := wapi.UserDelete(name); err != nil {
		return errors.Wrap(err, "NetUserDel")
	}
	return nil
}

func (d *netAPIDirectory) List() ([]string, error) {
	users, err := wapi.ListLocalUsers()
	if err != nil {
		return nil, errors.Wrap(err, "NetUserEnum")
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}

func (d *netAPIDirectory) Close() error {
	return nil
}

// withUserInfo3 fetches USER_INFO_3 for name and frees the buffer once fn
// returns.
func withUserInfo3(name string, fn func(*userInfo3) error) error {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return errors.Wrap(err, "encode user name")
	}

	var buf *byte
	if err := windows.NetUserGetInfo(nil, namePtr, 3, &buf); err != nil {
		if errno, ok := err.(windows.Errno); ok {
			if uintptr(errno) == wapi.NET_API_STATUS_NERR_UserNotFound {
				return ErrNotFound
			}
			return errors.Wrap(netAPIError(errno), "NetUserGetInfo")
		}
		return errors.Wrap(err, "NetUserGetInfo")
	}
	defer windows.NetApiBufferFree(buf)

	return fn((*userInfo3)(unsafe.Pointer(buf)))
}

func setUserInfo(name string, level uint32, info unsafe.Pointer) error {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return errors.Wrap(err, "encode user name")
	}
	var parmErr uint32
	ret, _, _ := procNetUserSetInfo.Call(
		uintptr(0),
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(level),
		uintptr(info),
		uintptr(unsafe.Pointer(&parmErr)),
	)
	if ret != wapi.NET_API_STATUS_NERR_Success {
		return errors.Wrapf(netAPIError(ret), "NetUserSetInfo level %d (parameter %d)", level, parmErr)
	}
	return nil
}

func applyFlags(flags uint32, changes AccountChanges) uint32 {
	set := func(bit uint32, on bool) {
		if on {
			flags |= bit
		} else {
			flags &^= bit
		}
	}
	if changes.Enabled != nil {
		set(wapi.USER_UF_ACCOUNTDISABLE, !*changes.Enabled)
	}
	if changes.PasswordNeverExpires != nil {
		set(wapi.USER_UF_DONT_EXPIRE_PASSWD, *changes.PasswordNeverExpires)
	}
	if changes.UserCannotChangePassword != nil {
		set(wapi.USER_UF_PASSWD_CANT_CHANGE, *changes.UserCannotChangePassword)
	}
	return flags
}

// netAPIError is a NET_API_STATUS code.
type netAPIError uintptr

func (e netAPIError) Error() string {
	switch e {
	case wapi.NET_API_STATUS_NERR_UserNotFound:
		return "the user name could not be found"
	case wapi.NET_API_STATUS_NERR_BadPassword:
		return "the password parameter is invalid"
	case wapi.NET_API_STATUS_NERR_PasswordTooShort:
		return "the password does not meet the password policy requirements"
	case wapi.NET_API_STATUS_NERR_LastAdmin:
		return "this operation is not allowed on the last administrative account"
	case wapi.NET_API_STATUS_NERR_SpeGroupOp:
		return "this operation is not allowed on this special group"
	case wapi.NET_API_STATUS_ERROR_ACCESS_DENIED:
		return "access is denied"
	case wapi.NET_API_STATUS_ERROR_INVALID_PARAMETER:
		return "the parameter is incorrect"
	case 2224: // NERR_UserExists
		return "the account already exists"
	}
	return fmt.Sprintf("%v (status %d)", windows.Errno(e), uintptr(e))
}
