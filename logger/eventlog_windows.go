//go:build windows

package logger

import (
	"github.com/rancher/wins/pkg/logs"
	"github.com/sirupsen/logrus"
)

// windowsHooks returns hooks writing to the application event log and to an
// ETW provider, both registered under source.
func windowsHooks(source string) ([]logrus.Hook, error) {
	etw, err := logs.NewEtwProviderHook(source)
	if err != nil {
		return nil, err
	}
	el, err := logs.NewEventLogHook(source)
	if err != nil {
		return nil, err
	}
	return []logrus.Hook{etw, el}, nil
}
