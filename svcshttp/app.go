package svcshttp

import (
	"context"
	"sync"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/internal/errors"
)

// RegistryHaver is an object that carries a [svcs.Registry], such as an [App].
//
// The registry may be nil until the object is ready.
type RegistryHaver interface {
	SvcsRegistry() *svcs.Registry
}

// GetRegistry returns the [svcs.Registry] from h.
//
// It returns an error if h is nil or its registry has not been set up yet.
func GetRegistry(h RegistryHaver) (*svcs.Registry, error) {
	if h == nil {
		return nil, errors.New("svcshttp.GetRegistry: app is nil")
	}

	reg := h.SvcsRegistry()
	if reg == nil {
		return nil, errors.New("svcshttp.GetRegistry: registry not set up, call Ready first")
	}

	return reg, nil
}

// RegisterFactory is the same as [svcs.Registry.RegisterFactory], but uses
// the registry on h.
func RegisterFactory(h RegistryHaver, factory any, opts ...svcs.RegisterOption) error {
	reg, err := GetRegistry(h)
	if err != nil {
		return err
	}

	return reg.RegisterFactory(factory, opts...)
}

// RegisterValue is the same as [svcs.Registry.RegisterValue], but uses the
// registry on h.
func RegisterValue(h RegistryHaver, value any, opts ...svcs.RegisterOption) error {
	reg, err := GetRegistry(h)
	if err != nil {
		return err
	}

	return reg.RegisterValue(value, opts...)
}

// App owns the application-wide [svcs.Registry].
//
// Call [App.Ready] once the application is configured; the registry is
// created on first call. App implements [RegistryHaver] and can be passed to
// [Middleware].
type App struct {
	mu       sync.Mutex
	registry *svcs.Registry
}

// NewApp creates a new [App] without a registry.
func NewApp() *App {
	return &App{}
}

// Ready sets up the registry.
//
// Ready may run more than once; the registry is only created if it has not
// been set yet.
func (a *App) Ready() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.registry == nil {
		a.registry = svcs.NewRegistry()
	}
}

// SvcsRegistry returns the registry, or nil if [App.Ready] has not run.
func (a *App) SvcsRegistry() *svcs.Registry {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.registry
}

// SetRegistry replaces the registry.
//
// This is mainly useful in tests to install a fresh registry per test case.
func (a *App) SetRegistry(reg *svcs.Registry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.registry = reg
}

// Close the registry, if one has been set up.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	reg := a.registry
	a.registry = nil
	a.mu.Unlock()

	if reg == nil {
		return nil
	}

	return reg.Close(ctx)
}

var _ RegistryHaver = (*App)(nil)

// WithRegistry adapts a bare [svcs.Registry] to [RegistryHaver], for use with
// [Middleware] when there is no [App].
func WithRegistry(reg *svcs.Registry) RegistryHaver {
	return registryHaver{reg}
}

type registryHaver struct {
	reg *svcs.Registry
}

func (h registryHaver) SvcsRegistry() *svcs.Registry {
	return h.reg
}
