package svcshttp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/svcs-kit"
	"github.com/sectrean/svcs-kit/internal/testtypes"
	"github.com/sectrean/svcs-kit/internal/testutils"
	"github.com/sectrean/svcs-kit/svcshttp"
)

func Test_App_Ready(t *testing.T) {
	t.Run("creates the registry", func(t *testing.T) {
		app := svcshttp.NewApp()
		assert.Nil(t, app.SvcsRegistry())

		app.Ready()
		assert.NotNil(t, app.SvcsRegistry())
	})

	t.Run("ready may run more than once", func(t *testing.T) {
		app := svcshttp.NewApp()

		app.Ready()
		registry := app.SvcsRegistry()

		app.Ready()
		assert.Same(t, registry, app.SvcsRegistry())
	})
}

func Test_GetRegistry(t *testing.T) {
	t.Run("ready app", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		registry, err := svcshttp.GetRegistry(app)
		assert.NoError(t, err)
		assert.Same(t, app.SvcsRegistry(), registry)
	})

	t.Run("unready app", func(t *testing.T) {
		app := svcshttp.NewApp()

		registry, err := svcshttp.GetRegistry(app)
		testutils.LogError(t, err)

		assert.Nil(t, registry)
		assert.EqualError(t, err, "svcshttp.GetRegistry: registry not set up, call Ready first")
	})

	t.Run("nil app", func(t *testing.T) {
		registry, err := svcshttp.GetRegistry(nil)
		testutils.LogError(t, err)

		assert.Nil(t, registry)
		assert.EqualError(t, err, "svcshttp.GetRegistry: app is nil")
	})
}

func Test_RegisterFactory(t *testing.T) {
	t.Run("registers on the app registry", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		err := svcshttp.RegisterFactory(app, testtypes.NewService)
		assert.NoError(t, err)

		assert.True(t, app.SvcsRegistry().Contains(testtypes.TypeService))
	})

	t.Run("unready app", func(t *testing.T) {
		app := svcshttp.NewApp()

		err := svcshttp.RegisterFactory(app, testtypes.NewService)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "svcshttp.GetRegistry: registry not set up, call Ready first")
	})
}

func Test_RegisterValue(t *testing.T) {
	t.Run("registers on the app registry", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		err := svcshttp.RegisterValue(app, &testtypes.Service{Value: 23})
		assert.NoError(t, err)

		assert.True(t, app.SvcsRegistry().Contains(testtypes.TypeService))
	})

	t.Run("forwards options", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		err := svcshttp.RegisterValue(app, &testtypes.Service{},
			svcs.As[testtypes.Interface](),
		)
		assert.NoError(t, err)

		assert.True(t, app.SvcsRegistry().Contains(testtypes.TypeInterface))
	})
}

func Test_App_SetRegistry(t *testing.T) {
	app := svcshttp.NewApp()
	app.Ready()

	registry := svcs.NewRegistry()
	app.SetRegistry(registry)

	assert.Same(t, registry, app.SvcsRegistry())
}

func Test_App_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the registry", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		registry := app.SvcsRegistry()

		err := app.Close(ctx)
		assert.NoError(t, err)

		assert.Nil(t, app.SvcsRegistry())
		assert.ErrorIs(t, registry.RegisterFactory(testtypes.NewService), svcs.ErrRegistryClosed)
	})

	t.Run("no registry", func(t *testing.T) {
		app := svcshttp.NewApp()
		assert.NoError(t, app.Close(ctx))
	})

	t.Run("runs registry close hooks", func(t *testing.T) {
		app := svcshttp.NewApp()
		app.Ready()

		closed := false
		require.NoError(t, svcshttp.RegisterFactory(app, testtypes.NewService,
			svcs.WithRegistryCloseFunc(func(context.Context) error {
				closed = true
				return nil
			}),
		))

		require.NoError(t, app.Close(ctx))
		assert.True(t, closed)
	})
}
