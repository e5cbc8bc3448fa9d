//go:build !linux

package led

import (
	"github.com/pkg/errors"

	"github.com/coreman2200/dotchase/internal/config"
)

func openRPIO(c *config.Config) (lookupFunc, func() error, error) {
	return nil, nil, errors.New("rpio backend needs linux")
}

func openCdev(c *config.Config) (lookupFunc, func() error, error) {
	return nil, nil, errors.New("cdev backend needs linux")
}
