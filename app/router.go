package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/\-]+$`).MatchString

// Router allows us to register many handlers with different paths and
// then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]crowdfund.Handler
}

var _ crowdfund.Registry = (*Router)(nil)
var _ crowdfund.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]crowdfund.Handler, 10),
	}
}

// Handle adds a new Handler for the path of given message.
// It panics if another Handler was already registered for that path
// or if the path is not valid.
func (r *Router) Handle(msg crowdfund.Msg, h crowdfund.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. If no handler
// is found, it returns a handler that fails with ErrNotFound.
func (r *Router) Handler(path string) crowdfund.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	path, err := msgPath(tx)
	if err != nil {
		return nil, err
	}
	return r.Handler(path).Deliver(ctx, store, tx)
}

func msgPath(tx crowdfund.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return "", errors.Wrap(errors.ErrMsg, "no message")
	}
	return msg.Path(), nil
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(crowdfund.Context, crowdfund.KVStore, crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
