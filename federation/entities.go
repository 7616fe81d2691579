package federation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrMissingTypename is returned for a representation without __typename.
var ErrMissingTypename = errors.New("representation is missing __typename")

// Any is the _Any scalar: an entity representation sent by the gateway.
type Any struct {
	TypeName string
	Fields   map[string]any
}

func (Any) ImplementsGraphQLType(name string) bool {
	return name == "_Any"
}

func (a *Any) UnmarshalGraphQL(input any) error {
	m, ok := input.(map[string]any)
	if !ok {
		return fmt.Errorf("_Any must be an object, got %T", input)
	}
	typeName, _ := m["__typename"].(string)
	if typeName == "" {
		return ErrMissingTypename
	}

	a.TypeName = typeName
	a.Fields = m
	return nil
}

// String returns a key field as a string. IDs may arrive as JSON numbers.
func (a Any) String(field string) (string, bool) {
	switch v := a.Fields[field].(type) {
	case string:
		return v, true
	case float64:
		return fmt.Sprintf("%v", v), true
	case int32:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}

// ReferenceResolver loads the entity a representation points at. It returns nil,
// nil when the entity does not exist.
type ReferenceResolver[T any] func(ctx context.Context, rep Any) (T, error)

// ResolveReferences resolves every representation concurrently, preserving order.
func ResolveReferences[T any](ctx context.Context, reps []Any, resolvers map[string]ReferenceResolver[T]) ([]T, error) {
	out := make([]T, len(reps))

	g, ctx := errgroup.WithContext(ctx)
	for i, rep := range reps {
		resolve, ok := resolvers[rep.TypeName]
		if !ok {
			return nil, fmt.Errorf("unknown entity type %q in representation %d", rep.TypeName, i)
		}

		g.Go(func() error {
			v, err := resolve(ctx, rep)
			if err != nil {
				return fmt.Errorf("failed to resolve %s reference %d: %w", rep.TypeName, i, err)
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
