// Package plugins holds the built-in tool, resource, and prompt plugins and
// registers each in the registry's compile-time factory tables via init.
package plugins

import (
	"fmt"
	"strconv"

	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/registry"
)

func init() {
	registry.RegisterTool("core.echo", newEcho)
	registry.RegisterTool("core.sum", newSum)
}

type echoPlugin struct {
	manifest gateway.PluginManifest
	schema   *registry.Schema
}

func newEcho(_ registry.Dependencies) (registry.ToolPlugin, error) {
	schema, err := registry.NewSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "description": "Text to echo back"},
		},
		"required": []any{"text"},
	})
	if err != nil {
		return nil, err
	}
	return &echoPlugin{
		manifest: gateway.NewManifest("core.echo", "Echo", "Returns the input text unchanged."),
		schema:   schema,
	}, nil
}

func (p *echoPlugin) Manifest() gateway.PluginManifest { return p.manifest }
func (p *echoPlugin) InputSchema() *registry.Schema     { return p.schema }

func (p *echoPlugin) Execute(_ registry.ToolContext, args map[string]any) (string, error) {
	text, _ := args["text"].(string)
	return text, nil
}

type sumPlugin struct {
	manifest gateway.PluginManifest
	schema   *registry.Schema
}

func newSum(_ registry.Dependencies) (registry.ToolPlugin, error) {
	schema, err := registry.NewSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number", "description": "First number"},
			"b": map[string]any{"type": "number", "description": "Second number"},
		},
		"required": []any{"a", "b"},
	})
	if err != nil {
		return nil, err
	}
	return &sumPlugin{
		manifest: gateway.NewManifest("core.sum", "Sum", "Returns the sum of two numbers."),
		schema:   schema,
	}, nil
}

func (p *sumPlugin) Manifest() gateway.PluginManifest { return p.manifest }
func (p *sumPlugin) InputSchema() *registry.Schema     { return p.schema }

func (p *sumPlugin) Execute(_ registry.ToolContext, args map[string]any) (string, error) {
	a, aok := toFloat(args["a"])
	b, bok := toFloat(args["b"])
	if !aok || !bok {
		return "", fmt.Errorf("a and b must be numbers")
	}
	result := a + b
	if result == float64(int64(result)) {
		return strconv.FormatInt(int64(result), 10), nil
	}
	return strconv.FormatFloat(result, 'g', -1, 64), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
