package tools

import (
	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/fieldspec"
)

func registerProjectTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	r.Register(newListTool("list_projects", "List projects", c.ListProjects))
	r.Register(newGetTool("get_project", "Fetch one project by id", "project", c.GetProject))
	r.Register(newCreateTool("create_project",
		"Create a project. Needs name and contact_id; state and type default to 1.",
		objectSchema(map[string]*JSONSchema{
			"name":               prop("string", "Project name (required)"),
			"contact_id":         prop("integer", "Id of the client contact (required)"),
			"user_id":            prop("integer", "Responsible user id (defaults to 1)"),
			"pr_state_id":        prop("integer", "Project state id (defaults to 1)"),
			"pr_project_type_id": prop("integer", "Project type id (defaults to 1)"),
		}),
		fieldspec.Project, e, c.CreateProject))
}

func registerItemTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	r.Register(newListTool("list_items", "List items (articles)", c.ListItems))
	r.Register(newGetTool("get_item", "Fetch one item by id", "item", c.GetItem))
	r.Register(newCreateTool("create_item",
		"Create an item (article). Only intern_name is required.",
		objectSchema(map[string]*JSONSchema{
			"intern_name":     prop("string", "Internal item name (required)"),
			"intern_code":     prop("string", "Internal item code"),
			"sale_price":      prop("number", "Sale price"),
			"article_type_id": prop("integer", "1 = physical, 2 = service (defaults to 1)"),
			"currency_id":     prop("integer", "Currency id (defaults to 1)"),
			"is_stock":        prop("boolean", "Whether stock is tracked (defaults to false)"),
			"delivery_price":  prop("number", "Delivery price (defaults to 0)"),
			"user_id":         prop("integer", "Responsible user id (defaults to 1)"),
		}),
		fieldspec.Item, e, c.CreateItem))
}
