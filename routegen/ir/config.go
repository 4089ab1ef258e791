package ir

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// QueryParam is an explicitly declared query parameter that becomes part of
// the generated function signature.
type QueryParam struct {
	Name string `yaml:"-" validate:"required,jsident,ne=q"`

	// Type is a free-form type expression, e.g. "string" or "'asc' | 'desc'".
	Type string `yaml:"type" validate:"required"`

	Required bool `yaml:"required"`
}

// QueryParams is an ordered list of explicit query parameters. In YAML it is
// written as a mapping from name to {type, required}; document order is kept.
type QueryParams []QueryParam

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *QueryParams) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: explicit query params must be a mapping", node.Line)
	}

	params := make(QueryParams, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var p QueryParam
		if err := node.Content[i].Decode(&p.Name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&p); err != nil {
			return fmt.Errorf("query param %q: %w", p.Name, err)
		}
		params = append(params, p)
	}

	*q = params
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (q QueryParams) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range q {
		var value yaml.Node
		if err := value.Encode(struct {
			Type     string `yaml:"type"`
			Required bool   `yaml:"required,omitempty"`
		}{p.Type, p.Required}); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Name},
			&value,
		)
	}
	return node, nil
}

// RouteOverride configures a single final route.
type RouteOverride struct {
	ExplicitQueryParams QueryParams `yaml:"explicitQueryParams" validate:"dive"`
}

// RoutesConfig holds per-route configuration grouped by variant. Pages are
// keyed by route key, endpoints by "<key>_<METHOD>" and actions by
// "<key>_<name>". Missing entries are valid and mean no explicit query params.
type RoutesConfig struct {
	Pages   map[string]RouteOverride `yaml:"PAGES" validate:"dive"`
	Servers map[string]RouteOverride `yaml:"SERVERS" validate:"dive"`
	Actions map[string]RouteOverride `yaml:"ACTIONS" validate:"dive"`
}

// QueryParamsFor returns the explicit query params configured for the
// composite key of a final route of the given variant.
func (c RoutesConfig) QueryParamsFor(variant Variant, key string) QueryParams {
	var group map[string]RouteOverride
	switch variant {
	case VariantPage:
		group = c.Pages
	case VariantServer:
		group = c.Servers
	case VariantAction:
		group = c.Actions
	default:
		panic(fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant)))
	}
	return group[key].ExplicitQueryParams
}
