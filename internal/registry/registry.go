package registry

import (
	"fmt"
	"log/slog"

	"github.com/Strob0t/toolgate/internal/config"
)

// ToolFactory, ResourceFactory, and PromptFactory construct plugin
// instances. The three factory tables are keyed
// by plugin name and populated at package init by each plugin's own file, so
// adding a plugin never requires touching this file.
type (
	ToolFactory     func(deps Dependencies) (ToolPlugin, error)
	ResourceFactory func(deps Dependencies) (ResourcePlugin, error)
	PromptFactory   func(deps Dependencies) (PromptPlugin, error)
)

var (
	toolFactories     = map[string]ToolFactory{}
	resourceFactories = map[string]ResourceFactory{}
	promptFactories   = map[string]PromptFactory{}
)

// RegisterTool adds name to the compile-time tool factory table. Called from
// plugin package init functions.
func RegisterTool(name string, f ToolFactory) { toolFactories[name] = f }

// RegisterResource adds name to the compile-time resource factory table.
func RegisterResource(name string, f ResourceFactory) { resourceFactories[name] = f }

// RegisterPrompt adds name to the compile-time prompt factory table.
func RegisterPrompt(name string, f PromptFactory) { promptFactories[name] = f }

// Dependencies bundles the shared state a plugin constructor may need. Not
// every plugin uses every field.
type Dependencies struct {
	Config *config.Config
}

// Registry holds the three name-indexed plugin maps served by the gateway.
type Registry struct {
	tools     map[string]ToolPlugin
	resources map[string]ResourcePlugin
	prompts   map[string]PromptPlugin
	logger    *slog.Logger
}

// New constructs an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:     make(map[string]ToolPlugin),
		resources: make(map[string]ResourcePlugin),
		prompts:   make(map[string]PromptPlugin),
		logger:    logger,
	}
}

// LoadPlugins instantiates every name in enabled from the compile-time
// factory tables. An unknown name logs a warning and is skipped; a
// constructor that returns an error logs a warning and is skipped; neither
// case prevents the rest of the list from loading.
func (r *Registry) LoadPlugins(enabled []string, deps Dependencies) {
	for _, name := range enabled {
		if err := r.load(name, deps); err != nil {
			r.logger.Warn("plugin not loaded", slog.String("plugin", name), slog.String("error", err.Error()))
		}
	}
}

func (r *Registry) load(name string, deps Dependencies) error {
	if f, ok := toolFactories[name]; ok {
		p, err := f(deps)
		if err != nil {
			return fmt.Errorf("construct tool %s: %w", name, err)
		}
		r.tools[p.Manifest().Name] = p
		return nil
	}
	if f, ok := resourceFactories[name]; ok {
		p, err := f(deps)
		if err != nil {
			return fmt.Errorf("construct resource %s: %w", name, err)
		}
		r.resources[p.URI()] = p
		return nil
	}
	if f, ok := promptFactories[name]; ok {
		p, err := f(deps)
		if err != nil {
			return fmt.Errorf("construct prompt %s: %w", name, err)
		}
		r.prompts[p.PromptName()] = p
		return nil
	}
	return fmt.Errorf("unknown plugin name: %s", name)
}

// AddTool inserts an already-constructed tool plugin directly, bypassing the
// factory table. Used for plugins whose constructor needs dependencies
// (e.g. the policy engine) beyond the standard Dependencies bundle.
func (r *Registry) AddTool(t ToolPlugin) {
	r.tools[t.Manifest().Name] = t
}

// Tool looks up a registered tool by name.
func (r *Registry) Tool(name string) (ToolPlugin, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Resource looks up a registered resource by URI.
func (r *Registry) Resource(uri string) (ResourcePlugin, bool) {
	res, ok := r.resources[uri]
	return res, ok
}

// Prompt looks up a registered prompt by name.
func (r *Registry) Prompt(name string) (PromptPlugin, bool) {
	p, ok := r.prompts[name]
	return p, ok
}

// Tools returns every registered tool, for transport-layer enumeration.
func (r *Registry) Tools() []ToolPlugin {
	out := make([]ToolPlugin, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

// Resources returns every registered resource.
func (r *Registry) Resources() []ResourcePlugin {
	out := make([]ResourcePlugin, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res)
	}
	return out
}

// Prompts returns every registered prompt.
func (r *Registry) Prompts() []PromptPlugin {
	out := make([]PromptPlugin, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	return out
}
