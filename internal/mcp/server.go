package mcp

import (
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/config"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "pantry"

// KnownTypes lists all valid type names.
var KnownTypes = []string{"product", "builder", "recipe", "idea"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"product_lookup": {
		def:     lookupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLookup },
	},
	"product_classify": {
		def:     classifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClassify },
	},
	"builder_show": {
		def:     builderShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderShow },
	},
	"builder_add_product": {
		def:     builderAddProductToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderAddProduct },
	},
	"builder_add_manual": {
		def:     builderAddManualToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderAddManual },
	},
	"builder_update_amount": {
		def:     builderUpdateAmountToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderUpdateAmount },
	},
	"builder_remove": {
		def:     builderRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderRemove },
	},
	"builder_clear": {
		def:     builderClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBuilderClear },
	},
	"recipe_save": {
		def:     recipeSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecipeSave },
	},
	"recipe_list": {
		def:     recipeListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecipeList },
	},
	"recipe_show": {
		def:     recipeShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecipeShow },
	},
	"recipe_delete": {
		def:     recipeDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecipeDelete },
	},
	"idea_save": {
		def:     ideaSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaSave },
	},
	"idea_list": {
		def:     ideaListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaList },
	},
	"idea_show": {
		def:     ideaShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaShow },
	},
	"idea_delete": {
		def:     ideaDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeaDelete },
	},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "recipe_save" → "recipe").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Pantry tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration. Unknown names are logged and ignored.
func NewServer(deps Deps, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		h.logger.Warn("ignoring unknown disabled tools", zap.Strings("tools", unknown))
	}
	if unknown := ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		h.logger.Warn("ignoring unknown disabled types", zap.Strings("types", unknown))
	}

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	registered := 0
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
		registered++
	}
	h.logger.Debug("mcp tools registered", zap.Int("count", registered), zap.Int("disabled", len(toolRegistry)-registered))

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps Deps, cfg *config.Config, version string) error {
	s := NewServer(deps, cfg, version)
	return server.ServeStdio(s)
}
