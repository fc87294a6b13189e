//go:build !windows || !amd64

package usermanager

import "context"

// NetAPIAccountStore is only available on windows/amd64.
type NetAPIAccountStore struct{}

func (s *NetAPIAccountStore) Open(ctx context.Context) (Directory, error) {
	return nil, ErrUnsupported
}
