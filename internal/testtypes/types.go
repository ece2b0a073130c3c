package testtypes

import (
	"context"
	"reflect"
)

var (
	TypeService        = reflect.TypeFor[*Service]()
	TypeAnotherService = reflect.TypeFor[*AnotherService]()
	TypeInterface      = reflect.TypeFor[Interface]()
)

// Interface is implemented by *Service.
type Interface interface {
	Work() int
}

// Service is a fake application service.
//
// The callback fields let tests observe cleanup and health checks.
type Service struct {
	Value     int
	CloseFunc func(context.Context) error
	PingFunc  func(context.Context) error
}

func NewService() *Service {
	return &Service{Value: 42}
}

func (s *Service) Work() int {
	return s.Value
}

func (s *Service) Close(ctx context.Context) error {
	if s.CloseFunc != nil {
		return s.CloseFunc(ctx)
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	if s.PingFunc != nil {
		return s.PingFunc(ctx)
	}
	return nil
}

// AnotherService is a second fake service. It has no Close or Ping methods.
type AnotherService struct {
	Service *Service
}

// The closer variants cover the compatible Close method signatures.

type ContextCloser struct {
	Closed bool
}

func (c *ContextCloser) Close(context.Context) {
	c.Closed = true
}

type ErrCloser struct {
	Err    error
	Closed bool
}

func (c *ErrCloser) Close() error {
	c.Closed = true
	return c.Err
}

type BareCloser struct {
	Closed bool
}

func (c *BareCloser) Close() {
	c.Closed = true
}
