// Package registry holds the plugin contracts (tools, resources, prompts),
// the name-indexed registry that serves them, and the compile-time factory
// table used to instantiate enabled plugins at startup.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Strob0t/toolgate/internal/domain/gateway"
)

// ToolContext is the per-call context handed to a ToolPlugin's Execute. It
// carries the resolved caller identity, the raw, pre-validation argument
// bytes (validation happens in the request wrapper using InputSchema), and
// the call's context so a tool can start child spans or respect
// cancellation.
type ToolContext struct {
	Context      context.Context
	Identity     gateway.AgentIdentity
	RawArguments json.RawMessage
}

// ToolPlugin is a callable tool: a manifest, an input schema, and an
// execute function returning a plain string result or an error.
type ToolPlugin interface {
	Manifest() gateway.PluginManifest
	InputSchema() *Schema
	Execute(ctx ToolContext, validatedArgs map[string]any) (string, error)
}

// ResourcePlugin serves a single URI, optionally gated on identity.
type ResourcePlugin interface {
	Manifest() gateway.PluginManifest
	URI() string
	Read(identity *gateway.AgentIdentity) (string, error)
}

// PromptArgument describes one named prompt argument.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptPlugin renders a named prompt template from an argument map.
type PromptPlugin interface {
	Manifest() gateway.PluginManifest
	PromptName() string
	Arguments() []PromptArgument
	Render(args map[string]string) (string, error)
}

// Schema wraps a compiled JSON Schema document describing a tool's
// arguments. It is built once at plugin construction time from a literal
// schema map and reused for every call.
type Schema struct {
	compiled *jsonschema.Schema
	raw      map[string]any
}

// NewSchema compiles a JSON-Schema-shaped map into a reusable Schema. The
// resource name is internal to the compiler and has no bearing on the tool
// name exposed to callers.
func NewSchema(doc map[string]any) (*Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled, raw: doc}, nil
}

// Validate checks args against the compiled schema.
func (s *Schema) Validate(args map[string]any) error {
	return s.compiled.Validate(args)
}

// Raw returns the schema's literal document, suitable for advertising to
// clients as the tool's declared input schema.
func (s *Schema) Raw() map[string]any {
	return s.raw
}
