// Package provider builds route descriptors from a SvelteKit routes directory.
//
// Endpoints and page server scripts are parsed to learn which HTTP methods
// and form actions they export. Page components and page scripts only need
// to exist.
package provider

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnhandledActionProperty is returned when the exported actions object
// contains a property whose name cannot be determined statically, like a
// spread element or a computed key.
var ErrUnhandledActionProperty = errors.New("unhandled action property kind")

// Extractor reads exported names from route source files.
type Extractor interface {
	// MethodNames returns the HTTP methods exported by an endpoint: every
	// exported name that is all upper-case, sorted and without duplicates.
	MethodNames(ctx context.Context, src []byte) ([]string, error)

	// ActionNames returns the property names of the exported actions object
	// of a page server script, sorted and without duplicates.
	ActionNames(ctx context.Context, src []byte) ([]string, error)
}

// Tree-sitter node types of the TypeScript grammar.
const (
	nodeExportStatement     = "export_statement"
	nodeExportClause        = "export_clause"
	nodeExportSpecifier     = "export_specifier"
	nodeLexicalDeclaration  = "lexical_declaration"
	nodeVariableDeclaration = "variable_declaration"
	nodeVariableDeclarator  = "variable_declarator"
	nodeFunctionDeclaration = "function_declaration"
	nodeGeneratorFunction   = "generator_function_declaration"
	nodeIdentifier          = "identifier"
	nodeString              = "string"
	nodeObject              = "object"
	nodePair                = "pair"
	nodeMethodDefinition    = "method_definition"
	nodeShorthandProperty   = "shorthand_property_identifier"
	nodePropertyIdentifier  = "property_identifier"
	nodeNumber              = "number"
	nodeComment             = "comment"
	nodeSatisfiesExpression = "satisfies_expression"
	nodeAsExpression        = "as_expression"
	nodeParenthesized       = "parenthesized_expression"
)

const actionsExport = "actions"

// DefaultCacheSize is the number of parse results kept by a TreeSitterExtractor.
const DefaultCacheSize = 256

type extractKind uint8

const (
	extractMethods extractKind = iota
	extractActions
)

type cacheKey struct {
	kind extractKind
	sum  [sha256.Size]byte
}

// TreeSitterExtractor implements Extractor with the tree-sitter TypeScript
// grammar, which also accepts plain JavaScript. Results are cached by content
// hash, so unchanged files are not parsed again. It is safe for concurrent use.
type TreeSitterExtractor struct {
	cache *lru.Cache[cacheKey, []string]
}

// NewTreeSitterExtractor returns an extractor caching up to size results.
// A size <= 0 uses DefaultCacheSize.
func NewTreeSitterExtractor(size int) (*TreeSitterExtractor, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, []string](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &TreeSitterExtractor{cache: cache}, nil
}

// MethodNames implements Extractor.
func (e *TreeSitterExtractor) MethodNames(ctx context.Context, src []byte) ([]string, error) {
	return e.extract(ctx, extractMethods, src)
}

// ActionNames implements Extractor.
func (e *TreeSitterExtractor) ActionNames(ctx context.Context, src []byte) ([]string, error) {
	return e.extract(ctx, extractActions, src)
}

func (e *TreeSitterExtractor) extract(ctx context.Context, kind extractKind, src []byte) ([]string, error) {
	key := cacheKey{kind: kind, sum: sha256.Sum256(src)}
	if names, ok := e.cache.Get(key); ok {
		return slices.Clone(names), nil
	}

	root, closeTree, err := parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer closeTree()

	var names []string
	switch kind {
	case extractMethods:
		names = methodNames(root, src)
	case extractActions:
		names, err = actionNames(root, src)
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(names)
	names = slices.Compact(names)
	e.cache.Add(key, names)
	return slices.Clone(names), nil
}

func parse(ctx context.Context, src []byte) (*sitter.Node, func(), error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		parser.Close()
		return nil, nil, fmt.Errorf("parse source: %w", err)
	}
	return tree.RootNode(), func() {
		tree.Close()
		parser.Close()
	}, nil
}

func methodNames(root *sitter.Node, src []byte) []string {
	var names []string
	forEachExport(root, src, func(name string, _ *sitter.Node) error {
		if strings.ToUpper(name) == name {
			names = append(names, name)
		}
		return nil
	})
	return names
}

func actionNames(root *sitter.Node, src []byte) ([]string, error) {
	var names []string
	err := forEachExport(root, src, func(name string, decl *sitter.Node) error {
		if name != actionsExport || decl.Type() != nodeVariableDeclarator {
			return nil
		}
		obj := objectLiteral(decl.ChildByFieldName("value"))
		if obj == nil {
			return nil
		}
		for i := range int(obj.NamedChildCount()) {
			prop := obj.NamedChild(i)
			if prop.Type() == nodeComment {
				continue
			}
			n, err := propertyName(prop, src)
			if err != nil {
				return err
			}
			names = append(names, n)
		}
		return nil
	})
	return names, err
}

// forEachExport calls fn with the exported name and the declaring node of
// every named export found anywhere below n.
func forEachExport(n *sitter.Node, src []byte, fn func(name string, decl *sitter.Node) error) error {
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child.Type() == nodeExportStatement {
			if err := exportedNames(child, src, fn); err != nil {
				return err
			}
		}
		if err := forEachExport(child, src, fn); err != nil {
			return err
		}
	}
	return nil
}

func exportedNames(stmt *sitter.Node, src []byte, fn func(string, *sitter.Node) error) error {
	if isDefaultExport(stmt) {
		return nil
	}
	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case nodeLexicalDeclaration, nodeVariableDeclaration:
			for i := range int(decl.NamedChildCount()) {
				d := decl.NamedChild(i)
				if d.Type() != nodeVariableDeclarator {
					continue
				}
				// Destructuring patterns have no single name.
				if name := d.ChildByFieldName("name"); name != nil && name.Type() == nodeIdentifier {
					if err := fn(name.Content(src), d); err != nil {
						return err
					}
				}
			}
		case nodeFunctionDeclaration, nodeGeneratorFunction:
			if name := decl.ChildByFieldName("name"); name != nil {
				return fn(name.Content(src), decl)
			}
		}
		return nil
	}

	for i := range int(stmt.NamedChildCount()) {
		clause := stmt.NamedChild(i)
		if clause.Type() != nodeExportClause {
			continue
		}
		for j := range int(clause.NamedChildCount()) {
			spec := clause.NamedChild(j)
			if spec.Type() != nodeExportSpecifier {
				continue
			}
			name := spec.ChildByFieldName("alias")
			if name == nil {
				name = spec.ChildByFieldName("name")
			}
			if name == nil {
				continue
			}
			if err := fn(unquote(name.Content(src)), spec); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDefaultExport(stmt *sitter.Node) bool {
	for i := range int(stmt.ChildCount()) {
		if c := stmt.Child(i); !c.IsNamed() && c.Type() == "default" {
			return true
		}
	}
	return false
}

// objectLiteral unwraps satisfies, as and parenthesized expressions down to
// an object literal. It returns nil for anything else.
func objectLiteral(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case nodeObject:
			return n
		case nodeSatisfiesExpression, nodeAsExpression, nodeParenthesized:
			n = n.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}

func propertyName(prop *sitter.Node, src []byte) (string, error) {
	switch prop.Type() {
	case nodeShorthandProperty:
		return prop.Content(src), nil
	case nodePair:
		return keyName(prop, prop.ChildByFieldName("key"), src)
	case nodeMethodDefinition:
		return keyName(prop, prop.ChildByFieldName("name"), src)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnhandledActionProperty, prop.Type())
	}
}

func keyName(prop, key *sitter.Node, src []byte) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: %s without name", ErrUnhandledActionProperty, prop.Type())
	}
	switch key.Type() {
	case nodePropertyIdentifier, nodeIdentifier, nodeNumber:
		return key.Content(src), nil
	case nodeString:
		return unquote(key.Content(src)), nil
	default:
		return "", fmt.Errorf("%w: %s with %s key", ErrUnhandledActionProperty, prop.Type(), key.Type())
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
