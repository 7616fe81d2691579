// Package resolvers implements the listings subgraph fields on top of the
// per-request ListingsAPI and BookingsDb datasources.
package resolvers

import (
	"context"
	"errors"

	"github.com/n9te9/listings-subgraph/datasources"
	"github.com/n9te9/listings-subgraph/requestctx"
)

// RoleHost is the userrole header value of listing owners.
const RoleHost = "Host"

var errNoDataSources = errors.New("datasources are not attached to the request context")

// Resolver is the root resolver. It holds no request state.
type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

func dataSourcesFrom(ctx context.Context) (*datasources.DataSources, error) {
	ds := datasources.FromContext(ctx)
	if ds == nil {
		return nil, errNoDataSources
	}
	return ds, nil
}

// requireHost returns the caller's user id when the caller is a logged-in host.
func requireHost(ctx context.Context, action string) (string, error) {
	user := requestctx.From(ctx)
	if user.UserID == nil {
		return "", AuthenticationError()
	}
	if !user.HasRole(RoleHost) {
		return "", ForbiddenError("Only hosts have access to " + action)
	}
	return *user.UserID, nil
}
