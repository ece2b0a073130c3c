// Package svcscontext stores a [svcs.Container] on a [context.Context] and
// resolves services from it.
package svcscontext

import (
	"context"
	"reflect"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/internal/errors"
)

type containerContextKey struct{}

// WithContainer returns a new [context.Context] that carries the provided
// [svcs.Container].
func WithContainer(ctx context.Context, c *svcs.Container) context.Context {
	return context.WithValue(ctx, containerContextKey{}, c)
}

// Container returns the [svcs.Container] stored on the [context.Context], if
// present. Otherwise it returns nil.
func Container(ctx context.Context) *svcs.Container {
	if c, ok := ctx.Value(containerContextKey{}).(*svcs.Container); ok {
		return c
	}
	return nil
}

// Get resolves a service of type Service from the [svcs.Container] stored on
// the [context.Context].
func Get[Service any](ctx context.Context) (Service, error) {
	var val Service

	c := Container(ctx)
	if c == nil {
		return val, errors.Errorf("get %s from context: container not found on context",
			reflect.TypeFor[Service]())
	}

	anyVal, err := c.Get(ctx, reflect.TypeFor[Service]())
	if anyVal != nil {
		val = anyVal.(Service)
	}

	return val, errors.Wrap(err, "get from context")
}

// MustGet resolves a service of type Service from the [svcs.Container] stored
// on the [context.Context].
//
// If the service cannot be resolved, this function will panic.
func MustGet[Service any](ctx context.Context) Service {
	val, err := Get[Service](ctx)
	if err != nil {
		panic(err)
	}
	return val
}
