package svcs

import (
	"context"
	"reflect"
)

// Pinger is implemented by services that can report their health.
//
// Register a service with [WithPing] to expose its Ping method as a health
// check.
type Pinger interface {
	Ping(ctx context.Context) error
}

var typePinger = reflect.TypeFor[Pinger]()

// ServicePing is a health check for one registered service.
//
// Collect them with [Container.GetPings].
type ServicePing struct {
	container *Container
	reg       *registration
}

// Name returns the name of the service type the check belongs to.
func (p ServicePing) Name() string {
	return p.reg.key.String()
}

// Ping instantiates the service through the Container and runs its health
// check.
func (p ServicePing) Ping(ctx context.Context) error {
	val, err := p.container.Get(ctx, p.reg.key)
	if err != nil {
		return err
	}

	return p.reg.ping(ctx, val)
}
