package svcs

import (
	"context"
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sectrean/svcs-kit/internal/errors"
)

// Registry holds bindings from service types to factories and values.
//
// A Registry usually lives for the lifetime of the application. Bindings may
// be added or replaced at any time; re-registering a service type replaces
// the previous binding for new [Container] lookups.
//
// Registry is safe for concurrent use.
type Registry struct {
	services *xsync.MapOf[reflect.Type, *registration]
	closers  []func(context.Context) error
	closerMu sync.Mutex
	closedMu sync.RWMutex
	closed   bool
}

// NewRegistry creates a new empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		services: xsync.NewMapOf[reflect.Type, *registration](),
	}
}

// RegisterFactory binds a service type to a factory function.
//
// The factory must return Service or (Service, error). The service is
// registered as the first return type of the factory (struct, pointer, or
// interface).
//
// Re-registering a service type replaces the previous binding for new
// lookups, along with any [As] aliases the previous registration added.
//
// The factory may accept [context.Context] and [*Container] parameters to
// resolve its own dependencies when the service is instantiated:
//
//	err := registry.RegisterFactory(func(ctx context.Context, c *svcs.Container) (*Store, error) {
//		db, err := svcs.Get[*DB](ctx, c)
//		if err != nil {
//			return nil, err
//		}
//		return NewStore(db), nil
//	})
//
// If the resolved instance implements [Closer], or a compatible Close method
// signature, it is cleaned up when the resolving [Container] is closed.
//
// Available options:
//   - [As] additionally binds the registration under an interface type.
//   - [WithPing] and [WithPingFunc] attach a health check.
//   - [WithCloseFunc] sets a custom cleanup function.
//   - [IgnoreCloser] opts the service out of cleanup.
//   - [WithRegistryCloseFunc] sets a hook run when the Registry is closed.
func (r *Registry) RegisterFactory(factory any, opts ...RegisterOption) error {
	reg, err := newFactoryRegistration(factory, opts...)
	if err != nil {
		return errors.Wrapf(err, "svcs.Registry.RegisterFactory %T", factory)
	}

	err = r.register(reg)
	return errors.Wrapf(err, "svcs.Registry.RegisterFactory %T", factory)
}

// RegisterValue binds a service type to an already-built value.
//
// The value is registered under its concrete type, even if the variable was
// declared as an interface. Use [As] to also bind it under an interface.
//
// The value is not cleaned up when a [Container] is closed unless registered
// with [WithCloser] or [WithCloseFunc].
//
// Available options are the same as for [Registry.RegisterFactory].
func (r *Registry) RegisterValue(value any, opts ...RegisterOption) error {
	reg, err := newValueRegistration(value, opts...)
	if err != nil {
		return errors.Wrapf(err, "svcs.Registry.RegisterValue %T", value)
	}

	err = r.register(reg)
	return errors.Wrapf(err, "svcs.Registry.RegisterValue %T", value)
}

func (r *Registry) register(reg *registration) error {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	if r.closed {
		return ErrRegistryClosed
	}

	// Drop alias bindings of the registration being replaced so they don't
	// keep resolving the old one. Aliases rebound by another registration
	// in the meantime are left alone.
	if old, replaced := r.services.Load(reg.key); replaced {
		for _, alias := range old.aliases {
			if cur, ok := r.services.Load(alias); ok && cur == old {
				r.services.Delete(alias)
			}
		}
	}

	r.services.Store(reg.key, reg)
	for _, alias := range reg.aliases {
		r.services.Store(alias, reg)
	}

	if reg.onRegistryClose != nil {
		r.closerMu.Lock()
		r.closers = append(r.closers, reg.onRegistryClose)
		r.closerMu.Unlock()
	}

	return nil
}

// Contains returns true if the Registry has a binding for the given [reflect.Type].
func (r *Registry) Contains(t reflect.Type) bool {
	_, found := r.services.Load(t)
	return found
}

func (r *Registry) lookup(t reflect.Type) (*registration, bool) {
	return r.services.Load(t)
}

func (r *Registry) isClosed() bool {
	r.closedMu.RLock()
	defer r.closedMu.RUnlock()

	return r.closed
}

// Close the Registry.
//
// Hooks registered with [WithRegistryCloseFunc] are run in the reverse order
// of registration. Errors returned from hooks are joined together.
//
// Close will return an error if called more than once. Registering or
// resolving services after Close returns [ErrRegistryClosed].
func (r *Registry) Close(ctx context.Context) error {
	r.closedMu.Lock()
	defer r.closedMu.Unlock()

	if r.closed {
		return errors.Wrap(ErrRegistryClosed, "svcs.Registry.Close: closed already")
	}
	r.closed = true

	r.closerMu.Lock()
	closers := r.closers
	r.closers = nil
	r.closerMu.Unlock()

	// Run hooks in LIFO order so the oldest registrations close last
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		err := closers[i](ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "svcs.Registry.Close")
	}

	return nil
}
