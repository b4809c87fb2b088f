package agent

import (
	"context"
	"fmt"
	"log"

	"erpchat/models"
	"erpchat/services/llm"
)

// Tool is the contract every registered tool implements. Call receives
// the raw argument JSON from the model and always answers with a
// ToolResult; an error return means the tool itself broke, not that the
// query found nothing.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, argsJSON string) (models.ToolResult, error)
}

// Registry holds the tools the model may invoke. It is populated at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Specs returns the provider-agnostic tool definitions for the chat
// request.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return specs
}

// Invoke dispatches a tool call and always produces a ToolResult. Unknown
// names, panics and handler errors all collapse into an error payload the
// model can read back; internal detail stays in the server log.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (result models.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] Tool '%s' panicked: %v", name, rec)
			result = models.ErrorResult(fmt.Sprintf("Error al ejecutar '%s'. Intenta de nuevo o reformula la consulta.", name))
		}
	}()

	tool, ok := r.tools[name]
	if !ok {
		log.Printf("[ERROR] Unknown tool requested: %s", name)
		return models.ErrorResult(fmt.Sprintf("Funcion '%s' no disponible", name))
	}

	log.Printf("[INFO] Executing tool: %s with arguments: %s", name, argsJSON)
	result, err := tool.Call(ctx, argsJSON)
	if err != nil {
		log.Printf("[ERROR] Tool '%s' failed: %v", name, err)
		return models.ErrorResult(fmt.Sprintf("Error al ejecutar '%s'. Intenta de nuevo o reformula la consulta.", name))
	}

	return result
}
