package tools

import (
	"context"
	"encoding/json"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/fieldspec"
)

func contactSchema() *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"name_1":          prop("string", "Company name or last name"),
		"name_2":          prop("string", "First name or additional name"),
		"mail":            prop("string", "Email address ('email' is accepted as an alias)"),
		"phone_fixed":     prop("string", "Phone number"),
		"address":         prop("string", "Street address"),
		"postcode":        prop("string", "Postal code"),
		"city":            prop("string", "City"),
		"contact_type_id": prop("integer", "1 = company, 2 = person (defaults to 2)"),
		"user_id":         prop("integer", "Responsible user id (defaults to 1)"),
		"owner_id":        prop("integer", "Owner user id (defaults to 1)"),
	})
}

func registerContactTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	r.Register(newListTool("list_contacts", "List contacts (companies and people)", c.ListContacts))

	r.Register(newGetTool("get_contact", "Fetch one contact by id", "contact",
		func(ctx context.Context, id int) (json.RawMessage, error) {
			record, err := c.GetContact(ctx, id)
			if err != nil {
				return nil, err
			}
			return json.Marshal(record)
		}))

	r.Register(newCreateTool("create_contact",
		"Create a contact. Only name_1 is required; type, user and owner default sensibly.",
		contactSchema(), fieldspec.Contact, e, c.CreateContact))

	updateSchema := contactSchema()
	updateSchema.Properties["contact_id"] = prop("integer", "Id of the contact to update")
	updateSchema.Required = []string{"contact_id"}
	r.Register(&updateContactTool{
		BaseTool: BaseTool{Def: ToolDefinition{
			Name:        "update_contact",
			Description: "Update a contact. Omitted fields keep their current values.",
			InputSchema: updateSchema,
		}},
		engine: e,
		update: c.UpdateContact,
	})

	r.Register(newSearchTool("search_contacts", "Search contacts by field criteria",
		`[{"field": "name_1", "value": "Acme", "criteria": "like"}]`, c.SearchContacts))
}

// updateContactTool merges the caller's changes with the existing record so
// a partial update never strips fields the API requires on PUT.
type updateContactTool struct {
	BaseTool
	engine *completion.Engine
	update func(context.Context, int, map[string]any) (json.RawMessage, error)
}

func (t *updateContactTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	id, err := intArg(args, "contact_id")
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}

	completed, err := t.engine.CompleteUpdate(ctx, fieldspec.Contact, id, payloadArg(args, "contact_id"))
	if err != nil {
		return errorResult(err)
	}

	raw, err := t.update(ctx, id, completed)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}
