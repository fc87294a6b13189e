//go:build !windows

package logger

import (
	"errors"

	"github.com/sirupsen/logrus"
)

func windowsHooks(source string) ([]logrus.Hook, error) {
	return nil, errors.New("the event log is only available on windows")
}
