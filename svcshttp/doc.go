/*
Package svcshttp hooks [svcs.Container] creation into the net/http request
lifecycle.

The middleware creates a [svcs.Container] for each request, stores it on the
request context, and closes it after the request has been processed.

Example:

	package main

	import (
		"net/http"

		"github.com/sectrean/svcs-kit"
		"github.com/sectrean/svcs-kit/svcshttp"
	)

	func main() {
		app := svcshttp.NewApp()
		app.Ready()

		svcshttp.RegisterFactory(app, NewDB,
			svcs.WithPing(),
		)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			db := svcshttp.MustGet[*DB](r)

			db.HandleRequest(w, r)
		})

		mw := svcshttp.Middleware(app)

		mux := http.NewServeMux()
		mux.Handle("/", mw(handler))
		mux.Handle("/healthy", mw(svcshttp.HealthHandler()))

		http.ListenAndServe(":8080", mux)
	}
*/
package svcshttp
