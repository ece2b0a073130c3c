package svcs

import (
	"context"
	"reflect"
)

// Get resolves a service of type Service from the [Container].
func Get[Service any](ctx context.Context, c *Container) (Service, error) {
	var val Service

	anyVal, err := c.Get(ctx, reflect.TypeFor[Service]())
	if anyVal != nil {
		val = anyVal.(Service)
	}

	return val, err
}

// MustGet resolves a service of type Service from the [Container].
//
// If the service cannot be resolved, this function will panic.
func MustGet[Service any](ctx context.Context, c *Container) Service {
	val, err := Get[Service](ctx, c)
	if err != nil {
		panic(err)
	}
	return val
}
