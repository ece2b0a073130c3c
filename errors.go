package svcs

import (
	"errors"
)

var (
	// ErrServiceNotRegistered is returned when a service type has no registration.
	ErrServiceNotRegistered = errors.New("service not registered")

	// ErrRegistryClosed is returned when registering or resolving on a closed [Registry].
	ErrRegistryClosed = errors.New("registry closed")

	// ErrInvalidFactory is returned when a factory function has an unsupported signature.
	ErrInvalidFactory = errors.New("invalid factory")
)
