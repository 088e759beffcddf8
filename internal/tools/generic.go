package tools

import (
	"context"
	"encoding/json"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/fieldspec"
)

// The bulk of the Bexio surface is list/get/search/create against one
// endpoint each. These generic tools bind a definition to one client method
// so each endpoint is one constructor call, not one hand-written struct.

type listFunc func(context.Context, bexio.ListParams) (json.RawMessage, error)
type getFunc func(context.Context, int) (json.RawMessage, error)
type searchFunc func(context.Context, []bexio.Criterion) (json.RawMessage, error)
type createFunc func(context.Context, map[string]any) (json.RawMessage, error)

type listTool struct {
	BaseTool
	list listFunc
}

func newListTool(name, desc string, list listFunc) *listTool {
	return &listTool{
		BaseTool: BaseTool{Def: ToolDefinition{Name: name, Description: desc, InputSchema: listSchema()}},
		list:     list,
	}
}

func (t *listTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	raw, err := t.list(ctx, listParamsArg(args))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

type getTool struct {
	BaseTool
	get getFunc
}

func newGetTool(name, desc, what string, get getFunc) *getTool {
	return &getTool{
		BaseTool: BaseTool{Def: ToolDefinition{Name: name, Description: desc, InputSchema: idSchema(what)}},
		get:      get,
	}
}

func (t *getTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	id, err := intArg(args, "id")
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}
	raw, err := t.get(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

type searchTool struct {
	BaseTool
	search searchFunc
}

func newSearchTool(name, desc, example string, search searchFunc) *searchTool {
	return &searchTool{
		BaseTool: BaseTool{Def: ToolDefinition{Name: name, Description: desc, InputSchema: criteriaSchema(example)}},
		search:   search,
	}
}

func (t *searchTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	criteria, err := criteriaArg(args)
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}
	raw, err := t.search(ctx, criteria)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

// createTool runs the payload through the completion engine before posting,
// so missing fields come back as guidance instead of a remote 422.
type createTool struct {
	BaseTool
	kind   fieldspec.ResourceKind
	engine *completion.Engine
	create createFunc
}

func newCreateTool(name, desc string, schema *JSONSchema, kind fieldspec.ResourceKind, engine *completion.Engine, create createFunc) *createTool {
	return &createTool{
		BaseTool: BaseTool{Def: ToolDefinition{Name: name, Description: desc, InputSchema: schema}},
		kind:     kind,
		engine:   engine,
		create:   create,
	}
}

func (t *createTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	completed, err := t.engine.Complete(ctx, t.kind, args)
	if err != nil {
		return errorResult(err)
	}
	raw, err := t.create(ctx, completed)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

// rawCreateTool posts the payload as-is, for endpoints with no completion
// rules (timesheets, client services, business activities, calendar years).
type rawCreateTool struct {
	BaseTool
	create createFunc
}

func newRawCreateTool(name, desc string, schema *JSONSchema, create createFunc) *rawCreateTool {
	return &rawCreateTool{
		BaseTool: BaseTool{Def: ToolDefinition{Name: name, Description: desc, InputSchema: schema}},
		create:   create,
	}
}

func (t *rawCreateTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	raw, err := t.create(ctx, args)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}
