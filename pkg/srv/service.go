package srv

import (
	"context"
	"errors"

	"github.com/sandevgo/docchat/pkg/log"
)

// Service is a long-running component started and stopped by the command that owns it.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine. A failing service
// cancels the process through fail.
func StartServices(ctx context.Context, services []Service, fail context.CancelCauseFunc) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed to start", service)
				if fail != nil {
					fail(err)
				}
			}
		}(service)
	}
}

// ShutdownServices waits for ctx to end, then stops services in reverse start order.
func ShutdownServices(ctx context.Context, shutdownCtx context.Context, services []Service) error {
	<-ctx.Done()
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		service := services[i]
		if err := service.Shutdown(shutdownCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
