package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different message paths
// and dispatch each transaction to the handler registered for the path of
// its message.
type Router struct {
	routes map[string]quorum.Handler
}

var _ quorum.Registry = (*Router)(nil)
var _ quorum.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]quorum.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered.
func (r *Router) Handle(path string, h quorum.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path.
func (r *Router) handler(path string) (quorum.Handler, error) {
	if h, ok := r.routes[path]; ok {
		return h, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	h, err := r.handler(quorum.GetPath(tx))
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	h, err := r.handler(quorum.GetPath(tx))
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, store, tx)
}
