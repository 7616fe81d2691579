package subgraph

import (
	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/lexer"
	"github.com/n9te9/graphql-parser/parser"
)

const unknownOperation = "unknown"

// operationInfo describes the operation a request executes, for logs and metrics.
type operationInfo struct {
	Type       string
	RootFields []string
}

// classifyOperation returns the type and root fields of the operation named
// operationName, or of the only operation when no name is given.
// Documents that fail to parse are reported as unknown; the executor produces the error.
func classifyOperation(query, operationName string) operationInfo {
	p := parser.New(lexer.New(query))
	doc := p.ParseDocument()
	if len(p.Errors()) > 0 || doc == nil {
		return operationInfo{Type: unknownOperation}
	}

	var op *ast.OperationDefinition
	for _, def := range doc.Definitions {
		o, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" || (o.Name != nil && o.Name.String() == operationName) {
			op = o
			break
		}
	}
	if op == nil {
		return operationInfo{Type: unknownOperation}
	}

	info := operationInfo{Type: operationType(op.Operation)}
	for _, sel := range op.SelectionSet {
		if f, ok := sel.(*ast.Field); ok {
			info.RootFields = append(info.RootFields, f.Name.String())
		}
	}
	return info
}

func operationType(op ast.OperationType) string {
	switch op {
	case ast.Query:
		return "query"
	case ast.Mutation:
		return "mutation"
	case ast.Subscription:
		return "subscription"
	}
	return unknownOperation
}
