// Package requestctx carries the caller identity of a GraphQL request to resolvers.
package requestctx

import (
	"context"
	"net/http"
)

const (
	HeaderUserID   = "userid"
	HeaderUserRole = "userrole"
)

// Context is created once per request. Nil fields mean the header was not sent.
type Context struct {
	UserID   *string
	UserRole *string
}

// Func derives the request context from an inbound request.
type Func func(r *http.Request) Context

// FromRequest reads the userid and userrole headers. Header names match case-insensitively.
func FromRequest(r *http.Request) Context {
	return Context{
		UserID:   header(r.Header, HeaderUserID),
		UserRole: header(r.Header, HeaderUserRole),
	}
}

func header(h http.Header, name string) *string {
	values, ok := h[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// HasRole reports whether the caller sent exactly the given role.
func (c Context) HasRole(role string) bool {
	return c.UserRole != nil && *c.UserRole == role
}

type contextKey struct{}

func With(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// From returns the request context stored in ctx, or the zero Context.
func From(ctx context.Context) Context {
	c, _ := ctx.Value(contextKey{}).(Context)
	return c
}
