package svcs

import (
	"context"
)

// Closer is used to clean up a service when its [Container] is closed.
//
// If a service resolved from a factory implements Closer, or one of the other
// compatible Close method signatures, it is cleaned up when the Container is
// closed:
//
//	Close(context.Context) error
//	Close(context.Context)
//	Close() error
//	Close()
//
// Services registered with [Registry.RegisterValue] are not cleaned up by
// default. See [WithCloser], [IgnoreCloser], and [WithCloseFunc].
type Closer interface {
	Close(ctx context.Context) error
}

type closerFactory func(val any) Closer

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error {
	return f(ctx)
}

// detectCloser adapts any of the supported Close method signatures to [Closer].
func detectCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case interface{ Close(context.Context) }:
		return closeFunc(func(ctx context.Context) error {
			c.Close(ctx)
			return nil
		})
	case interface{ Close() error }:
		return closeFunc(func(context.Context) error {
			return c.Close()
		})
	case interface{ Close() }:
		return closeFunc(func(context.Context) error {
			c.Close()
			return nil
		})
	}

	return nil
}
