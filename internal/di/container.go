// Package di wires every owm-relay service together using samber/do,
// grounded on the teacher's cmd/cc-relay/di and internal/di packages
// (container.go, register.go). owm-relay's dependency graph is far
// shallower than cc-relay's multi-provider one, so it collapses the
// teacher's two-tier (cmd/di for bootstrap, internal/di for hot-reloadable
// services) split into one package.
package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
)

// EnvFileKey is the named key for the optional .env file path.
const EnvFileKey = "config.envFile"

// Container wraps the do.Injector with owm-relay's registered services.
type Container struct {
	injector *do.RootScope
}

// NewContainer builds and registers every service. envFile may be empty.
func NewContainer(envFile string) (*Container, error) {
	injector := do.New()
	do.ProvideNamedValue(injector, EnvFileKey, envFile)
	RegisterSingletons(injector)
	return &Container{injector: injector}, nil
}

// Injector returns the underlying do.RootScope for advanced resolution.
func (c *Container) Injector() *do.RootScope {
	return c.injector
}

// Invoke resolves a service from the container.
func Invoke[T any](c *Container) (T, error) {
	return do.Invoke[T](c.injector)
}

// MustInvoke resolves a service from the container or panics. Use only
// during startup, where a missing service is fatal anyway.
func MustInvoke[T any](c *Container) T {
	return do.MustInvoke[T](c.injector)
}

// Shutdown shuts every registered service down in reverse init order.
func (c *Container) Shutdown() error {
	report := c.injector.Shutdown()
	if report != nil && !report.Succeed {
		return fmt.Errorf("shutdown failed: %s", report.Error())
	}
	return nil
}

// ShutdownWithContext shuts down with a deadline for the whole sequence.
func (c *Container) ShutdownWithContext(ctx context.Context) error {
	done := make(chan *do.ShutdownReport, 1)
	go func() {
		done <- c.injector.ShutdownWithContext(ctx)
	}()

	select {
	case report := <-done:
		if report != nil && !report.Succeed {
			return fmt.Errorf("shutdown failed: %s", report.Error())
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
