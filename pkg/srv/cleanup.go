package srv

import (
	"context"
	"errors"
)

// cleanupService runs closers on shutdown and does nothing on start.
type cleanupService struct {
	closers []func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range c.closers {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewCleanup(closers ...func() error) Service {
	return &cleanupService{closers: closers}
}
