// Package federation turns a plain SDL document into a subgraph schema that a
// federation gateway can query: it adds _service, _entities and the federation
// directive declarations, then builds an executable graph-gophers schema.
package federation

import (
	"fmt"
	"strings"

	"github.com/graph-gophers/graphql-go"
)

// directiveDefinitions are declared unless the document already declares them.
var directiveDefinitions = []struct {
	name string
	sdl  string
}{
	{"external", "directive @external on FIELD_DEFINITION | OBJECT"},
	{"requires", "directive @requires(fields: _FieldSet!) on FIELD_DEFINITION"},
	{"provides", "directive @provides(fields: _FieldSet!) on FIELD_DEFINITION"},
	{"key", "directive @key(fields: _FieldSet!, resolvable: Boolean = true) on OBJECT | INTERFACE"},
	{"extends", "directive @extends on OBJECT | INTERFACE"},
	{"shareable", "directive @shareable on OBJECT | FIELD_DEFINITION"},
	{"inaccessible", "directive @inaccessible on FIELD_DEFINITION | OBJECT | INTERFACE | UNION | ARGUMENT_DEFINITION | SCALAR | ENUM | ENUM_VALUE | INPUT_OBJECT | INPUT_FIELD_DEFINITION"},
	{"override", "directive @override(from: String!) on FIELD_DEFINITION"},
	{"tag", "directive @tag(name: String!) on FIELD_DEFINITION | OBJECT | INTERFACE | UNION | ARGUMENT_DEFINITION | SCALAR | ENUM | ENUM_VALUE | INPUT_OBJECT | INPUT_FIELD_DEFINITION"},
}

// AugmentedSDL returns the type definitions extended with the federation types,
// the _entities root field and directive declarations. _Service and _service are
// built into graph-gophers and must not be redeclared.
func (sg *Subgraph) AugmentedSDL() string {
	var sb strings.Builder
	sb.WriteString(sg.sdl)
	sb.WriteString("\n\nscalar _Any\nscalar _FieldSet\n")

	if entities := sg.ResolvableEntities(); len(entities) > 0 {
		sb.WriteString("\nunion _Entity = ")
		sb.WriteString(strings.Join(entities, " | "))
		sb.WriteString("\n")

		if sg.hasQuery {
			sb.WriteString("\nextend type Query {\n")
		} else {
			sb.WriteString("\ntype Query {\n")
		}
		sb.WriteString("  _entities(representations: [_Any!]!): [_Entity]!\n}\n")
	}

	for _, d := range directiveDefinitions {
		if sg.declaredDirectives[d.name] {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(d.sdl)
	}
	sb.WriteString("\n")

	return sb.String()
}

// BuildSubgraphSchema binds resolver to the augmented schema. When the subgraph owns
// resolvable entities the root resolver must provide Entities(ctx, args).
//
// _service is answered by graph-gophers from the schema string, which is reset to
// the un-augmented document so gateways compose the original type definitions.
func BuildSubgraphSchema(sg *Subgraph, resolver any, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	if !sg.hasQuery && len(sg.ResolvableEntities()) == 0 {
		return nil, fmt.Errorf("failed to build subgraph schema %q: no Query type and no resolvable entities", sg.Name)
	}
	schema, err := graphql.ParseSchema(sg.AugmentedSDL(), resolver, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build subgraph schema %q: %w", sg.Name, err)
	}
	schema.ASTSchema().SchemaString = sg.sdl
	return schema, nil
}
