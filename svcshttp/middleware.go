package svcshttp

import (
	"log/slog"
	"net/http"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/svcscontext"
)

// Middleware creates a new [svcs.Container] for each request.
// The container is closed after the request has been processed.
//
// The registry is resolved from h when each request comes in, so the
// middleware may be installed before the [App] is ready.
//
// The container is stored on the request context and can be accessed using
// [From], [Get], [MustGet], or the svcscontext package.
//
// Available options:
//   - [WithRegistryErrorHandler] sets the error handler for when the registry
//     cannot be resolved from h.
//   - [WithCloseErrorHandler] sets the error handler for when there is an
//     error closing the container.
func Middleware(h RegistryHaver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	mw := &middleware{
		h:               h,
		registryHandler: defaultRegistryErrorHandler,
		closeHandler:    defaultCloseErrorHandler,
	}
	for _, opt := range opts {
		opt.applyMiddleware(mw)
	}

	return func(next http.Handler) http.Handler {
		// Copy so the middleware can wrap more than one handler
		m := *mw
		m.next = next
		return &m
	}
}

// RegistryErrorHandler is a function that writes an error response to the
// client. It is called by the middleware when the registry cannot be resolved
// from the [RegistryHaver].
//
// The default handler logs the error to [slog.Default] and writes a
// 500 Internal Server Error response.
type RegistryErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultRegistryErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error resolving service registry for request", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// CloseErrorHandler is a function that handles errors when closing the
// [svcs.Container] after the request has completed.
//
// The default handler logs the error to [slog.Default].
type CloseErrorHandler = func(r *http.Request, err error)

func defaultCloseErrorHandler(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error closing request container", "error", err)
}

type middleware struct {
	h               RegistryHaver
	registryHandler RegistryErrorHandler
	closeHandler    CloseErrorHandler
	next            http.Handler
}

func (m *middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reg, err := GetRegistry(m.h)
	if err != nil {
		if m.registryHandler != nil {
			m.registryHandler(w, r, err)
		}
		return
	}

	container := svcs.NewContainer(reg)

	ctx := svcscontext.WithContainer(r.Context(), container)

	// Close the container even if the handler panics
	defer func() {
		closeErr := container.Close(ctx)
		if closeErr != nil && m.closeHandler != nil {
			m.closeHandler(r, closeErr)
		}
	}()

	m.next.ServeHTTP(w, r.WithContext(ctx))
}

// MiddlewareOption is an option used to configure the middleware when calling
// [Middleware].
type MiddlewareOption interface {
	applyMiddleware(*middleware)
}

type middlewareOption func(*middleware)

func (o middlewareOption) applyMiddleware(m *middleware) {
	o(m)
}

// WithRegistryErrorHandler sets the error handler for when the registry
// cannot be resolved when a request comes in.
func WithRegistryErrorHandler(fn RegistryErrorHandler) MiddlewareOption {
	return middlewareOption(func(m *middleware) {
		m.registryHandler = fn
	})
}

// WithCloseErrorHandler sets the error handler for when there is an error
// closing the request container.
func WithCloseErrorHandler(fn CloseErrorHandler) MiddlewareOption {
	return middlewareOption(func(m *middleware) {
		m.closeHandler = fn
	})
}
