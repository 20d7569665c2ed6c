package geo

import (
	"fmt"

	"meepleserver/apperr"
)

func providerErr(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrProviderFailure, err)
}

func providerErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperr.ErrProviderFailure, fmt.Sprintf(format, args...))
}
