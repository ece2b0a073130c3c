/*
Package svcs is a service registry and locator with a per-request container.

A [Registry] holds bindings from service types to factories. A [Container]
belongs to one unit of work (typically an HTTP request), instantiates services
lazily on first use, caches them for its lifetime, and cleans them up when it
is closed.

Example:

	registry := svcs.NewRegistry()
	defer registry.Close(ctx)

	err := registry.RegisterFactory(NewDB,
		svcs.WithPing(),
	)

	container := svcs.NewContainer(registry)
	defer container.Close(ctx)

	db, err := svcs.Get[*DB](ctx, container)

See the svcshttp package for hooking containers into the net/http request
lifecycle.
*/
package svcs
