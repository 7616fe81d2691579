package federation

import (
	"fmt"
	"strings"

	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/lexer"
	"github.com/n9te9/graphql-parser/parser"
)

// EntityKey represents the @key directive information of an Entity.
type EntityKey struct {
	FieldSet   string // Field set specified in @key (e.g., "id")
	Resolvable bool   // Resolvable parameter of @key directive
}

// Entity represents an object type with a @key directive.
type Entity struct {
	Name        string
	Keys        []EntityKey
	isExtension bool
}

// IsExtension reports whether the entity was declared with `extend type`.
func (e *Entity) IsExtension() bool {
	return e.isExtension
}

// IsResolvable reports whether this subgraph can resolve references to the entity.
func (e *Entity) IsResolvable() bool {
	for _, k := range e.Keys {
		if k.Resolvable {
			return true
		}
	}
	return false
}

// Subgraph is the parsed, immutable type definitions of this service.
type Subgraph struct {
	Name string

	sdl                string
	entities           map[string]*Entity
	entityOrder        []string
	declaredDirectives map[string]bool
	hasQuery           bool
}

// NewSubgraph parses typeDefs and extracts entities from @key directives.
func NewSubgraph(name string, typeDefs []byte) (*Subgraph, error) {
	p := parser.New(lexer.New(string(typeDefs)))
	doc := p.ParseDocument()
	if len(p.Errors()) > 0 || doc == nil {
		return nil, fmt.Errorf("parse error: %v", p.Errors())
	}

	sg := &Subgraph{
		Name:               name,
		sdl:                string(typeDefs),
		entities:           make(map[string]*Entity),
		declaredDirectives: make(map[string]bool),
	}

	for _, def := range doc.Definitions {
		switch def := def.(type) {
		case *ast.DirectiveDefinition:
			sg.declaredDirectives[def.Name.String()] = true
		case *ast.ObjectTypeDefinition:
			if def.Name.String() == "Query" {
				sg.hasQuery = true
			}
			sg.addEntity(def.Name.String(), def.Directives, false)
		case *ast.ObjectTypeExtension:
			if def.Name.String() == "Query" {
				sg.hasQuery = true
			}
			sg.addEntity(def.Name.String(), def.Directives, true)
		case *ast.InterfaceTypeDefinition:
			sg.addEntity(def.Name.String(), def.Directives, false)
		case *ast.InterfaceTypeExtension:
			sg.addEntity(def.Name.String(), def.Directives, true)
		}
	}

	return sg, nil
}

func (sg *Subgraph) addEntity(name string, directives []*ast.Directive, isExtension bool) {
	keys := parseEntityKeys(directives)
	if len(keys) == 0 {
		return
	}

	if existing, ok := sg.entities[name]; ok {
		existing.Keys = append(existing.Keys, keys...)
		return
	}

	sg.entities[name] = &Entity{
		Name:        name,
		Keys:        keys,
		isExtension: isExtension,
	}
	sg.entityOrder = append(sg.entityOrder, name)
}

// SDL returns the type definitions exactly as loaded.
func (sg *Subgraph) SDL() string {
	return sg.sdl
}

// Entity returns the entity with the specified name.
func (sg *Subgraph) Entity(name string) (*Entity, bool) {
	e, ok := sg.entities[name]
	return e, ok
}

// ResolvableEntities returns the names of entities this subgraph resolves, in declaration order.
func (sg *Subgraph) ResolvableEntities() []string {
	var names []string
	for _, name := range sg.entityOrder {
		if sg.entities[name].IsResolvable() {
			names = append(names, name)
		}
	}
	return names
}

// parseEntityKeys parses EntityKey list from @key directives.
func parseEntityKeys(directives []*ast.Directive) []EntityKey {
	var keys []EntityKey

	for _, d := range directives {
		if d.Name != "key" {
			continue
		}

		key := EntityKey{Resolvable: true}
		for _, arg := range d.Arguments {
			switch arg.Name.String() {
			case "fields":
				if v, ok := arg.Value.(*ast.StringValue); ok {
					key.FieldSet = strings.TrimSpace(v.Value)
				}
			case "resolvable":
				if v, ok := arg.Value.(*ast.BooleanValue); ok {
					key.Resolvable = v.Value
				}
			}
		}
		keys = append(keys, key)
	}

	return keys
}
