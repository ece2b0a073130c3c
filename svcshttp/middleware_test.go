package svcshttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/internal/errors"
	"github.com/sectrean/svcs-kit/internal/testtypes"
	"github.com/sectrean/svcs-kit/internal/testutils"
	"github.com/sectrean/svcs-kit/svcscontext"
	"github.com/sectrean/svcs-kit/svcshttp"
)

func Test_Middleware(t *testing.T) {
	t.Run("container on request context", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		require.NoError(t, svcshttp.RegisterFactory(app, testtypes.NewService))

		mw := svcshttp.Middleware(app)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotNil(t, svcshttp.From(r))
			assert.Same(t, svcshttp.From(r), svcscontext.Container(r.Context()))

			svc, err := svcshttp.Get[*testtypes.Service](r)
			assert.NoError(t, err)
			assert.Equal(t, 42, svc.Value)

			w.WriteHeader(http.StatusOK)
		})

		code := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("wraps multiple handlers", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		mw := svcshttp.Middleware(app)

		handlerA := mw(http.NotFoundHandler())
		handlerB := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		assert.Equal(t, http.StatusNotFound, RunRequest(t, handlerA, "/"))
		assert.Equal(t, http.StatusTeapot, RunRequest(t, handlerB, "/"))
	})

	t.Run("registry resolved per request", func(t *testing.T) {
		// The app becomes ready after the middleware has been installed.
		app := svcshttp.NewApp()

		mw := svcshttp.Middleware(app)
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		code := RunRequest(t, handler, "/")
		assert.Equal(t, http.StatusInternalServerError, code)

		app.Ready()

		code = RunRequest(t, handler, "/")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("registry error handler", func(t *testing.T) {
		called := false

		mw := svcshttp.Middleware(nil,
			svcshttp.WithRegistryErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				assert.NotNil(t, w)
				assert.NotNil(t, r)
				assert.EqualError(t, err, "svcshttp.GetRegistry: app is nil")
				called = true

				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)

		handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			assert.Fail(t, "handler should not get called")
		})

		code := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.True(t, called)
	})

	t.Run("container closed after request", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		closed := false
		require.NoError(t, svcshttp.RegisterFactory(app, func() *testtypes.Service {
			return &testtypes.Service{
				CloseFunc: func(context.Context) error {
					closed = true
					return nil
				},
			}
		}))

		mw := svcshttp.Middleware(app)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = svcshttp.MustGet[*testtypes.Service](r)
			assert.False(t, closed)

			w.WriteHeader(http.StatusOK)
		})

		code := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, code)

		assert.True(t, closed)
	})

	t.Run("container closed when handler panics", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		closed := false
		require.NoError(t, svcshttp.RegisterFactory(app, func() *testtypes.Service {
			return &testtypes.Service{
				CloseFunc: func(context.Context) error {
					closed = true
					return nil
				},
			}
		}))

		mw := svcshttp.Middleware(app)

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = svcshttp.MustGet[*testtypes.Service](r)
			panic("handler panic")
		}))

		res := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/", http.NoBody)
		require.NoError(t, err)

		assert.Panics(t, func() {
			handler.ServeHTTP(res, req)
		})
		assert.True(t, closed)
	})

	t.Run("close error handler", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		require.NoError(t, svcshttp.RegisterFactory(app, func() *testtypes.Service {
			return &testtypes.Service{
				CloseFunc: func(context.Context) error {
					return errors.New("close error")
				},
			}
		}))

		called := false

		mw := svcshttp.Middleware(app,
			svcshttp.WithCloseErrorHandler(func(r *http.Request, err error) {
				assert.NotNil(t, r)
				assert.EqualError(t, err, "svcs.Container.Close: close error")
				called = true
			}),
		)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = svcshttp.MustGet[*testtypes.Service](r)
			w.WriteHeader(http.StatusOK)
		})

		code := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, code)

		assert.True(t, called)
	})

	t.Run("with registry", func(t *testing.T) {
		registry := svcs.NewRegistry()
		require.NoError(t, registry.RegisterValue(&testtypes.Service{Value: 23}))

		mw := svcshttp.Middleware(svcshttp.WithRegistry(registry))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc := svcshttp.MustGet[*testtypes.Service](r)
			assert.Equal(t, 23, svc.Value)

			w.WriteHeader(http.StatusOK)
		})

		code := RunRequest(t, mw(handler), "/")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("concurrent requests get isolated containers", func(t *testing.T) {
		const concurrency = 100

		app := svcshttp.NewApp()
		app.Ready()

		require.NoError(t, svcshttp.RegisterFactory(app, testtypes.NewService))

		mw := svcshttp.Middleware(app)

		instances := make(chan *testtypes.Service, concurrency)
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instances <- svcshttp.MustGet[*testtypes.Service](r)
		}))

		testutils.RunParallel(concurrency, func(int) {
			RunRequest(t, handler, "/")
		})
		close(instances)

		seen := make(map[*testtypes.Service]struct{})
		for svc := range instances {
			seen[svc] = struct{}{}
		}
		assert.Len(t, seen, concurrency)
	})
}

func RunRequest(t *testing.T, h http.Handler, path string) int {
	t.Helper()

	res := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, http.NoBody)
	require.NoError(t, err)

	h.ServeHTTP(res, req)
	return res.Code
}
