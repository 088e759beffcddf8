package tools

// JSONSchema describes tool parameters in the subset of JSON Schema the
// MCP tools/list response carries.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
}

// ToolDefinition is one entry of the tools/list response.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema *JSONSchema `json:"inputSchema"`
}

// ToolCall is a parsed tools/call invocation.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the output of a tool execution. Output carries the raw JSON
// response on success; Error carries caller guidance on failure.
type ToolResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Schema constructors shared by the tool definitions.

func objectSchema(props map[string]*JSONSchema, required ...string) *JSONSchema {
	return &JSONSchema{Type: "object", Properties: props, Required: required}
}

func prop(typ, desc string) *JSONSchema {
	return &JSONSchema{Type: typ, Description: desc}
}

func arrayProp(desc string, items *JSONSchema) *JSONSchema {
	return &JSONSchema{Type: "array", Description: desc, Items: items}
}

// listSchema covers the shared pagination parameters of list endpoints.
func listSchema() *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"limit":    prop("integer", "Maximum number of records to return"),
		"offset":   prop("integer", "Number of records to skip"),
		"order_by": prop("string", "Field to order results by"),
	})
}

func idSchema(what string) *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"id": prop("integer", "The "+what+" id"),
	}, "id")
}

func criteriaSchema(example string) *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"criteria": arrayProp(
			"Search criteria, e.g. "+example,
			objectSchema(map[string]*JSONSchema{
				"field":    prop("string", "Field name to match (dotted paths reach nested objects)"),
				"value":    prop("string", "Value to match"),
				"criteria": {Type: "string", Description: "Comparison operator", Enum: []string{"=", "like"}},
			}, "field", "value"),
		),
	}, "criteria")
}
