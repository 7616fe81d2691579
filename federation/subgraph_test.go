package federation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/listings-subgraph/federation"
)

func TestNewSubgraph(t *testing.T) {
	schema := `
		type Product @key(fields: "id") {
			id: ID!
			name: String!
			owner: User!
		}

		type User @key(fields: "id", resolvable: false) {
			id: ID!
		}

		extend type Review @key(fields: "id") @key(fields: "sku version") {
			id: ID! @external
			sku: String! @external
			version: Int! @external
			product: Product
		}

		type Query {
			product(id: ID!): Product
		}
	`

	sg, err := federation.NewSubgraph("products", []byte(schema))
	if err != nil {
		t.Fatalf("NewSubgraph failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Product", "Review"}, sg.ResolvableEntities()); diff != "" {
		t.Errorf("ResolvableEntities mismatch (-want +got):\n%s", diff)
	}

	user, ok := sg.Entity("User")
	if !ok {
		t.Fatal("User entity not found")
	}
	if user.IsResolvable() {
		t.Error("expected User to be unresolvable")
	}

	review, ok := sg.Entity("Review")
	if !ok {
		t.Fatal("Review entity not found")
	}
	if !review.IsExtension() {
		t.Error("expected Review entity to be an extension")
	}
	want := []federation.EntityKey{
		{FieldSet: "id", Resolvable: true},
		{FieldSet: "sku version", Resolvable: true},
	}
	if diff := cmp.Diff(want, review.Keys); diff != "" {
		t.Errorf("Review keys mismatch (-want +got):\n%s", diff)
	}

	if sg.SDL() != schema {
		t.Error("SDL must be returned unchanged")
	}
}

func TestNewSubgraph_ParseError(t *testing.T) {
	if _, err := federation.NewSubgraph("broken", []byte(`type Query { product(: Product }`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSubgraph_AugmentedSDL(t *testing.T) {
	tests := []struct {
		name       string
		schema     string
		contains   []string
		notContain []string
	}{
		{
			name: "entities and existing query",
			schema: `type Listing @key(fields: "id") { id: ID! }
type Query { listing(id: ID!): Listing }`,
			notContain: []string{"_Service", "_service"},
			contains: []string{
				"union _Entity = Listing",
				"extend type Query {",
				"_entities(representations: [_Any!]!): [_Entity]!",
				"directive @key(fields: _FieldSet!, resolvable: Boolean = true) on OBJECT | INTERFACE",
			},
		},
		{
			name:       "no entities",
			schema:     `type Query { ping: String }`,
			contains:   []string{"scalar _Any", "scalar _FieldSet"},
			notContain: []string{"_Entity", "_entities", "extend type Query", "_Service"},
		},
		{
			name:     "entities without query",
			schema:   `type Listing @key(fields: "id") { id: ID! }`,
			contains: []string{"type Query {\n  _entities(representations: [_Any!]!): [_Entity]!\n}"},
		},
		{
			name: "directive already declared",
			schema: `directive @tag(name: String!) on OBJECT
type Query { hello: String @shareable }`,
			notContain: []string{"directive @tag(name: String!) on FIELD_DEFINITION"},
			contains:   []string{"directive @shareable on OBJECT | FIELD_DEFINITION"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg, err := federation.NewSubgraph("test", []byte(tt.schema))
			if err != nil {
				t.Fatalf("NewSubgraph failed: %v", err)
			}
			got := sg.AugmentedSDL()
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected augmented SDL to contain %q:\n%s", s, got)
				}
			}
			for _, s := range tt.notContain {
				if strings.Contains(got, s) {
					t.Errorf("expected augmented SDL not to contain %q:\n%s", s, got)
				}
			}
		})
	}
}
