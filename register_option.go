package svcs

import (
	"context"
	"reflect"

	"github.com/sectrean/svcs-kit/internal/errors"
)

// RegisterOption is used to configure a service registration when calling
// [Registry.RegisterFactory] or [Registry.RegisterValue].
type RegisterOption interface {
	applyRegistration(*registration) error
}

type registerOption func(*registration) error

func (o registerOption) applyRegistration(reg *registration) error {
	return o(reg)
}

// As additionally binds the registration under type T.
//
// Use this to register a service under an interface it implements:
//
//	err := registry.RegisterFactory(NewPostgresStore, // returns *PostgresStore
//		svcs.As[Store](),
//	)
//
// This option will return an error if the service type is not assignable to T.
func As[T any]() RegisterOption {
	return registerOption(func(reg *registration) error {
		err := reg.addAlias(reflect.TypeFor[T]())
		return errors.Wrapf(err, "as %s", reflect.TypeFor[T]())
	})
}

// WithPing attaches a health check that calls the service's own
// Ping(context.Context) error method.
//
// The check is not run at registration time. Use [Container.GetPings] to
// collect and run the health checks of all registered services.
//
// This option will return an error if the service type cannot implement [Pinger].
func WithPing() RegisterOption {
	return registerOption(func(reg *registration) error {
		if reg.key.Kind() != reflect.Interface && !reg.key.Implements(typePinger) {
			return errors.Errorf("with ping: service type %s has no Ping(context.Context) error method", reg.key)
		}

		reg.ping = func(ctx context.Context, val any) error {
			p, ok := val.(Pinger)
			if !ok {
				return errors.Errorf("service %T has no Ping(context.Context) error method", val)
			}
			return p.Ping(ctx)
		}
		return nil
	})
}

// WithPingFunc attaches a custom health check function to the registration.
//
// This option will return an error if the service type is not assignable to T.
func WithPingFunc[T any](f func(context.Context, T) error) RegisterOption {
	return registerOption(func(reg *registration) error {
		pingType := reflect.TypeFor[T]()
		if !reg.key.AssignableTo(pingType) {
			return errors.Errorf("with ping func: service type %s is not assignable to %s",
				reg.key, pingType)
		}

		reg.ping = func(ctx context.Context, val any) error {
			return f(ctx, val.(T))
		}
		return nil
	})
}

// WithCloser opts the service in to cleanup when the [Container] is closed.
//
// If the resolved instance implements [Closer], or a compatible Close method
// signature, it is closed with the Container. This is the default for factory
// registrations. Value registrations are not cleaned up unless this option is
// used.
func WithCloser() RegisterOption {
	return registerOption(func(reg *registration) error {
		reg.closerFactory = detectCloser
		return nil
	})
}

// IgnoreCloser opts the service out of cleanup, even if the resolved instance
// implements [Closer] or a compatible Close method signature.
//
// Use this when the lifecycle of a service is managed outside the [Container].
func IgnoreCloser() RegisterOption {
	return registerOption(func(reg *registration) error {
		reg.closerFactory = nil
		return nil
	})
}

// WithCloseFunc sets a custom function to clean up the service when the
// [Container] is closed.
//
// This is useful for services with a Shutdown or Stop method, or to clean up
// value registrations:
//
//	svcs.WithCloseFunc(func(ctx context.Context, s *http.Server) error {
//		return s.Shutdown(ctx)
//	})
//
// This option will return an error if the service type is not assignable to T.
func WithCloseFunc[T any](f func(context.Context, T) error) RegisterOption {
	return registerOption(func(reg *registration) error {
		closeType := reflect.TypeFor[T]()
		if !reg.key.AssignableTo(closeType) {
			return errors.Errorf("with close func: service type %s is not assignable to %s",
				reg.key, closeType)
		}

		reg.closerFactory = func(val any) Closer {
			return closeFunc(func(ctx context.Context) error {
				return f(ctx, val.(T))
			})
		}
		return nil
	})
}

// WithRegistryCloseFunc sets a hook that is run when the [Registry] is closed.
//
// Use this to release resources held by the factory itself, such as a
// connection pool shared by the instances it creates.
func WithRegistryCloseFunc(f func(context.Context) error) RegisterOption {
	return registerOption(func(reg *registration) error {
		if f == nil {
			return errors.New("with registry close func: f is nil")
		}

		reg.onRegistryClose = f
		return nil
	})
}
