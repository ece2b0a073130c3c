package svcshttp

import (
	"net/http"
	"reflect"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/internal/errors"
	"github.com/sectrean/svcs-kit/svcscontext"
)

// From returns the current [svcs.Container] from the request.
//
// It returns nil if the request did not pass through [Middleware].
func From(r *http.Request) *svcs.Container {
	return svcscontext.Container(r.Context())
}

// Get resolves a service of type Service from the request's [svcs.Container].
func Get[Service any](r *http.Request) (Service, error) {
	var val Service

	c := From(r)
	if c == nil {
		return val, errors.Errorf("get %s from request: container not found on request",
			reflect.TypeFor[Service]())
	}

	anyVal, err := c.Get(r.Context(), reflect.TypeFor[Service]())
	if anyVal != nil {
		val = anyVal.(Service)
	}

	return val, errors.Wrap(err, "get from request")
}

// MustGet resolves a service of type Service from the request's
// [svcs.Container].
//
// If the service cannot be resolved, this function will panic.
func MustGet[Service any](r *http.Request) Service {
	val, err := Get[Service](r)
	if err != nil {
		panic(err)
	}
	return val
}

// OverwriteFactory replaces the factory for a service type on the request
// container's registry, then closes the container to reset its instantiation
// cache.
//
// Instances already handed out keep working; the next resolution uses the new
// factory. This is mainly useful in tests.
func OverwriteFactory(r *http.Request, factory any, opts ...svcs.RegisterOption) error {
	err := overwrite(r, func(reg *svcs.Registry) error {
		return reg.RegisterFactory(factory, opts...)
	})

	return errors.Wrap(err, "svcshttp.OverwriteFactory")
}

// OverwriteValue replaces the service value for a service type on the request
// container's registry, then closes the container to reset its instantiation
// cache.
func OverwriteValue(r *http.Request, value any, opts ...svcs.RegisterOption) error {
	err := overwrite(r, func(reg *svcs.Registry) error {
		return reg.RegisterValue(value, opts...)
	})

	return errors.Wrap(err, "svcshttp.OverwriteValue")
}

func overwrite(r *http.Request, register func(*svcs.Registry) error) error {
	c := From(r)
	if c == nil {
		return errors.New("container not found on request")
	}

	if err := register(c.Registry()); err != nil {
		return err
	}

	// Reset the instantiation cache so the new registration takes effect
	return c.Close(r.Context())
}
