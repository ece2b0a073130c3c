package svcs

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/sectrean/svcs-kit/internal/errors"
)

// Container resolves services from a [Registry] for one unit of work,
// typically an HTTP request.
//
// Services are instantiated lazily on first [Container.Get] and cached for
// the lifetime of the Container. Instances whose registrations carry a
// cleanup are cleaned up in reverse order of instantiation when the
// Container is closed.
//
// Container is safe for concurrent use. A factory may resolve further
// services from the Container it is passed, but resolving its own service
// type recursively will deadlock.
type Container struct {
	registry   *Registry
	resolved   map[reflect.Type]*instancePromise
	resolvedMu sync.Mutex
	cleanups   []Closer
	cleanupMu  sync.Mutex
}

// NewContainer creates a new [Container] on top of the given [Registry].
func NewContainer(r *Registry) *Container {
	return &Container{
		registry: r,
		resolved: make(map[reflect.Type]*instancePromise),
	}
}

// Registry returns the [Registry] the Container resolves from.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Get resolves a service of the given [reflect.Type].
//
// The first call instantiates the service; subsequent calls return the cached
// instance until the Container is closed. Instantiation errors are not
// cached.
//
// Most callers should use the generic [Get] function instead.
func (c *Container) Get(ctx context.Context, t reflect.Type) (any, error) {
	val, err := c.get(ctx, t)
	if err != nil {
		return nil, errors.Wrapf(err, "svcs.Container.Get %s", t)
	}

	return val, nil
}

func (c *Container) get(ctx context.Context, t reflect.Type) (any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if c.registry.isClosed() {
		return nil, ErrRegistryClosed
	}

	c.resolvedMu.Lock()
	if p, exists := c.resolved[t]; exists {
		c.resolvedMu.Unlock()
		return p.Result()
	}

	reg, found := c.registry.lookup(t)
	if !found {
		c.resolvedMu.Unlock()
		return nil, ErrServiceNotRegistered
	}

	// Store the promise before instantiating so concurrent calls for the
	// same type wait rather than instantiate twice.
	p := newInstancePromise()
	c.resolved[t] = p
	c.resolvedMu.Unlock()

	val, err := reg.instantiate(ctx, c)
	if err != nil {
		// Don't cache the error, a later Get may succeed
		c.resolvedMu.Lock()
		delete(c.resolved, t)
		c.resolvedMu.Unlock()

		p.setResult(nil, err)
		return nil, err
	}

	if closer := reg.closerFor(val); closer != nil {
		c.cleanupMu.Lock()
		c.cleanups = append(c.cleanups, closer)
		c.cleanupMu.Unlock()
	}

	p.setResult(val, nil)
	return val, nil
}

// GetPings returns a [ServicePing] for every registered service that carries
// a health check, sorted by service name.
//
// Running a ping instantiates the service through this Container.
func (c *Container) GetPings() []ServicePing {
	seen := make(map[*registration]struct{})
	var pings []ServicePing

	c.registry.services.Range(func(_ reflect.Type, reg *registration) bool {
		if reg.ping == nil {
			return true
		}
		if _, dup := seen[reg]; dup {
			// Registered under an alias as well
			return true
		}
		seen[reg] = struct{}{}

		pings = append(pings, ServicePing{container: c, reg: reg})
		return true
	})

	slices.SortFunc(pings, func(a, b ServicePing) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return pings
}

// Close the Container.
//
// Cleanups collected from resolved services are run in the reverse order of
// instantiation. Errors returned from cleanups are joined together.
//
// Close also resets the instantiation cache, so the Container remains usable:
// services resolved afterwards are instantiated fresh. Closing a Container
// with nothing to clean up is a no-op.
func (c *Container) Close(ctx context.Context) error {
	c.resolvedMu.Lock()
	c.resolved = make(map[reflect.Type]*instancePromise)
	c.resolvedMu.Unlock()

	c.cleanupMu.Lock()
	cleanups := c.cleanups
	c.cleanups = nil
	c.cleanupMu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		err := cleanups[i].Close(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "svcs.Container.Close")
	}

	return nil
}

// instancePromise is the cached result of instantiating a service.
// Concurrent resolvers of the same type wait on it instead of instantiating
// the service a second time.
type instancePromise struct {
	val  any
	err  error
	done chan struct{}
}

func newInstancePromise() *instancePromise {
	return &instancePromise{
		done: make(chan struct{}),
	}
}

func (p *instancePromise) setResult(val any, err error) {
	p.val = val
	p.err = err
	close(p.done)
}

func (p *instancePromise) Result() (any, error) {
	<-p.done
	return p.val, p.err
}
