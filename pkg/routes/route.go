// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group collects routes under a shared prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux using method-qualified patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
