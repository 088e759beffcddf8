package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"bexmcp/internal/bexio"
)

func timesheetSchema() *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"user_id":           prop("integer", "User the time is tracked for"),
		"client_service_id": prop("integer", "Client service the time is booked against"),
		"pr_project_id":     prop("integer", "Project the time belongs to"),
		"allowable_bill":    prop("boolean", "Whether the time is billable"),
		"text":              prop("string", "Description of the work"),
		"tracking": objectSchema(map[string]*JSONSchema{
			"type":     prop("string", "Tracking type, e.g. duration"),
			"date":     prop("string", "Date in YYYY-MM-DD format"),
			"duration": prop("string", "Duration in HH:MM format"),
		}),
	})
}

func registerTimeTrackingTools(r *Registry, c *bexio.Client) {
	r.Register(newListTool("list_timesheets", "List time entries", c.ListTimesheets))
	r.Register(newGetTool("get_timesheet", "Fetch one time entry by id", "timesheet", c.GetTimesheet))
	r.Register(newRawCreateTool("create_timesheet", "Create a time entry", timesheetSchema(), c.CreateTimesheet))

	updateSchema := timesheetSchema()
	updateSchema.Properties["timesheet_id"] = prop("integer", "Id of the time entry to update")
	updateSchema.Required = []string{"timesheet_id"}
	r.Register(&updateTimesheetTool{
		BaseTool: BaseTool{Def: ToolDefinition{
			Name:        "update_timesheet",
			Description: "Update a time entry",
			InputSchema: updateSchema,
		}},
		client: c,
	})

	r.Register(&deleteTimesheetTool{
		BaseTool: BaseTool{Def: ToolDefinition{
			Name:        "delete_timesheet",
			Description: "Delete a time entry",
			InputSchema: idSchema("timesheet"),
		}},
		client: c,
	})

	r.Register(newSearchTool("search_timesheets", "Search time entries by field criteria",
		`[{"field": "user_id", "value": "1", "criteria": "="}]`, c.SearchTimesheets))

	r.Register(newListTool("list_timesheet_statuses", "List timesheet statuses",
		func(ctx context.Context, _ bexio.ListParams) (json.RawMessage, error) {
			return c.ListTimesheetStatuses(ctx)
		}))
	r.Register(newGetTool("get_timesheet_status", "Fetch one timesheet status by id", "timesheet status", c.GetTimesheetStatus))
}

func registerServiceTools(r *Registry, c *bexio.Client) {
	r.Register(newListTool("list_client_services", "List client services", c.ListClientServices))
	r.Register(newGetTool("get_client_service", "Fetch one client service by id", "client service", c.GetClientService))
	r.Register(newRawCreateTool("create_client_service", "Create a client service",
		objectSchema(map[string]*JSONSchema{
			"name": prop("string", "Service name"),
		}, "name"),
		c.CreateClientService))
	r.Register(newSearchTool("search_client_services", "Search client services by field criteria",
		`[{"field": "name", "value": "Support", "criteria": "like"}]`, c.SearchClientServices))

	r.Register(newListTool("list_business_activities", "List business activities", c.ListBusinessActivities))
	r.Register(newGetTool("get_business_activity", "Fetch one business activity by id", "business activity", c.GetBusinessActivity))
	r.Register(newRawCreateTool("create_business_activity", "Create a business activity",
		objectSchema(map[string]*JSONSchema{
			"name": prop("string", "Activity name"),
		}, "name"),
		c.CreateBusinessActivity))
	r.Register(newSearchTool("search_business_activities", "Search business activities by field criteria",
		`[{"field": "name", "value": "Development", "criteria": "like"}]`, c.SearchBusinessActivities))
}

type updateTimesheetTool struct {
	BaseTool
	client *bexio.Client
}

func (t *updateTimesheetTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	id, err := intArg(args, "timesheet_id")
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}
	raw, err := t.client.UpdateTimesheet(ctx, id, payloadArg(args, "timesheet_id"))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

type deleteTimesheetTool struct {
	BaseTool
	client *bexio.Client
}

func (t *deleteTimesheetTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	id, err := intArg(args, "id")
	if err != nil {
		return ToolResult{Success: false, Error: err.Error()}
	}
	if err := t.client.DeleteTimesheet(ctx, id); err != nil {
		return errorResult(err)
	}
	return rawResult(json.RawMessage(fmt.Sprintf(`{"success": true, "deleted_id": %d}`, id)))
}
