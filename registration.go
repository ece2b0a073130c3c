package svcs

import (
	"context"
	"reflect"

	"github.com/sectrean/svcs-kit/internal/errors"
)

// registration binds a service type to a factory or a value, along with its
// ping, cleanup, and registry-close hooks.
type registration struct {
	key     reflect.Type
	aliases []reflect.Type

	// Factory registrations
	factory reflect.Value
	args    []reflect.Type
	hasErr  bool

	// Value registrations
	value   any
	isValue bool

	closerFactory   closerFactory
	ping            func(ctx context.Context, val any) error
	onRegistryClose func(ctx context.Context) error
}

func newFactoryRegistration(factory any, opts ...RegisterOption) (*registration, error) {
	if factory == nil {
		return nil, errors.Wrap(ErrInvalidFactory, "factory is nil")
	}

	fnType := reflect.TypeOf(factory)
	if fnType.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrInvalidFactory, "%T is not a function", factory)
	}

	// The service type is the first return type
	var key reflect.Type
	switch {
	case fnType.NumOut() == 1:
		key = fnType.Out(0)
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		key = fnType.Out(0)
	default:
		return nil, errors.Wrap(ErrInvalidFactory, "factory must return Service or (Service, error)")
	}

	if err := validateServiceType(key); err != nil {
		return nil, err
	}

	// Factories pull their own dependencies from the Container,
	// so only context.Context and *Container parameters are allowed.
	args := make([]reflect.Type, fnType.NumIn())
	for i := range fnType.NumIn() {
		in := fnType.In(i)
		if in != typeContext && in != typeContainer {
			return nil, errors.Wrapf(ErrInvalidFactory,
				"factory parameter %s: must be context.Context or *svcs.Container", in)
		}
		args[i] = in
	}

	reg := &registration{
		key:           key,
		factory:       reflect.ValueOf(factory),
		args:          args,
		hasErr:        fnType.NumOut() == 2,
		closerFactory: detectCloser,
	}

	err := applyOptions(opts, func(opt RegisterOption) error {
		return opt.applyRegistration(reg)
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func newValueRegistration(value any, opts ...RegisterOption) (*registration, error) {
	if value == nil {
		return nil, errors.New("value is nil")
	}

	key := reflect.TypeOf(value)
	if err := validateServiceType(key); err != nil {
		return nil, err
	}

	reg := &registration{
		key:     key,
		value:   value,
		isValue: true,
		// Values are not cleaned up by the Container by default.
		closerFactory: nil,
	}

	err := applyOptions(opts, func(opt RegisterOption) error {
		return opt.applyRegistration(reg)
	})
	if err != nil {
		return nil, err
	}

	return reg, nil
}

func validateServiceType(t reflect.Type) error {
	switch t {
	// These are the special types recognized in factory signatures.
	case typeError,
		typeContext,
		typeContainer:
		return errors.Errorf("invalid service type %s", t)
	}

	return nil
}

// instantiate creates the service instance.
// The Container is passed through so factories can resolve their own dependencies.
func (reg *registration) instantiate(ctx context.Context, c *Container) (any, error) {
	if reg.isValue {
		return reg.value, nil
	}

	in := make([]reflect.Value, len(reg.args))
	for i, arg := range reg.args {
		if arg == typeContext {
			in[i] = reflect.ValueOf(ctx)
		} else {
			in[i] = reflect.ValueOf(c)
		}
	}

	out := reg.factory.Call(in)

	var err error
	if reg.hasErr {
		err, _ = out[1].Interface().(error)
	}

	return out[0].Interface(), err
}

// closerFor returns a [Closer] for the instance, or nil if the service is not
// cleaned up by the Container.
func (reg *registration) closerFor(val any) Closer {
	// A typed-nil service would bind a Closer over a nil receiver
	if reg.closerFactory == nil || isNil(val) {
		return nil
	}

	return reg.closerFactory(val)
}

func (reg *registration) addAlias(alias reflect.Type) error {
	if !reg.key.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", reg.key, alias)
	}

	reg.aliases = append(reg.aliases, alias)
	return nil
}
