package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
)

func newTestRegistry(t *testing.T, handler http.Handler) *Registry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := bexio.New(bexio.Options{Token: "test-token", BaseURL: srv.URL})
	engine := completion.NewEngine(completion.NewBexioLookup(client, nil))
	return NewBexioRegistry(client, engine)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return body
}

func TestRegistryCoversToolSurface(t *testing.T) {
	registry := newTestRegistry(t, http.NotFoundHandler())
	defs := registry.List()

	byName := make(map[string]bool, len(defs))
	for _, d := range defs {
		byName[d.Name] = true
		if d.Description == "" {
			t.Errorf("tool %s has no description", d.Name)
		}
		if d.InputSchema == nil {
			t.Errorf("tool %s has no input schema", d.Name)
		}
	}

	for _, name := range []string{
		"list_contacts", "get_contact", "create_contact", "update_contact", "search_contacts",
		"list_invoices", "get_invoice", "create_invoice", "search_invoices",
		"list_quotes", "get_quote", "create_quote", "search_quotes",
		"list_projects", "get_project", "create_project",
		"list_items", "get_item", "create_item",
		"list_accounts", "get_account", "search_accounts",
		"list_account_groups", "get_account_group",
		"list_taxes", "get_tax",
		"list_currencies", "get_currency", "create_currency", "get_exchange_rates",
		"list_manual_entries", "get_manual_entry", "create_manual_entry",
		"get_next_reference_number", "get_journal",
		"list_business_years", "get_business_year",
		"list_calendar_years", "get_calendar_year", "create_calendar_year",
		"list_vat_periods", "get_vat_period",
		"list_timesheets", "get_timesheet", "create_timesheet",
		"update_timesheet", "delete_timesheet", "search_timesheets",
		"list_timesheet_statuses", "get_timesheet_status",
		"list_client_services", "get_client_service", "create_client_service", "search_client_services",
		"list_business_activities", "get_business_activity", "create_business_activity", "search_business_activities",
	} {
		if !byName[name] {
			t.Errorf("tool %s is not registered", name)
		}
	}

	for i := 1; i < len(defs); i++ {
		if defs[i-1].Name > defs[i].Name {
			t.Errorf("List() is not sorted: %s before %s", defs[i-1].Name, defs[i].Name)
		}
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := newTestRegistry(t, http.NotFoundHandler())

	result := registry.Execute(context.Background(), ToolCall{Name: "no_such_tool"})
	if result.Success {
		t.Error("unknown tool should not succeed")
	}
	if !strings.Contains(result.Error, "unknown tool: no_such_tool") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestCreateContactFillsDefaults(t *testing.T) {
	var sent map[string]any
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2.0/contact" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		sent = decodeBody(t, r)
		w.Write([]byte(`{"id": 99, "name_1": "Acme AG"}`))
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name:      "create_contact",
		Arguments: map[string]any{"name_1": "Acme AG"},
	})
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}

	if sent["name_1"] != "Acme AG" {
		t.Errorf("name_1 = %v", sent["name_1"])
	}
	// JSON round-trips numbers as float64
	if sent["contact_type_id"] != float64(2) || sent["user_id"] != float64(1) || sent["owner_id"] != float64(1) {
		t.Errorf("defaults not applied: %v", sent)
	}
}

func TestCreateInvoiceCompletesPositions(t *testing.T) {
	var sent map[string]any
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3.0/taxes":
			w.Write([]byte(`[{"id": 3, "value": 8.1, "is_active": true}, {"id": 17, "value": 0.0, "is_active": true}]`))
		case "/2.0/kb_invoice":
			sent = decodeBody(t, r)
			w.Write([]byte(`{"id": 5}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name: "create_invoice",
		Arguments: map[string]any{
			"contact_id": float64(7),
			"positions":  []any{map[string]any{"text": "Consulting"}},
		},
	})
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}

	positions := sent["positions"].([]any)
	pos := positions[0].(map[string]any)
	if pos["type"] != "KbPositionCustom" || pos["amount"] != float64(1) || pos["unit_price"] != float64(0) {
		t.Errorf("position defaults not applied: %v", pos)
	}
	if pos["tax_id"] != float64(17) {
		t.Errorf("tax_id = %v, want the active 0%% rate id 17", pos["tax_id"])
	}
}

func TestCreateInvoiceMissingContactGuidance(t *testing.T) {
	posted := false
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
		}
		if r.URL.Path == "/3.0/taxes" {
			w.Write([]byte(`[{"id": 17, "value": 0.0, "is_active": true}]`))
		}
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name: "create_invoice",
		Arguments: map[string]any{
			"positions": []any{map[string]any{"text": "Consulting"}},
		},
	})
	if result.Success {
		t.Fatal("expected a validation failure")
	}
	if !strings.Contains(result.Error, "contact_id") || !strings.Contains(result.Error, "search_contacts") {
		t.Errorf("Error = %q, want contact_id guidance", result.Error)
	}
	if posted {
		t.Error("incomplete payload must not be posted")
	}
}

func TestUpdateContactMergesExisting(t *testing.T) {
	var sent map[string]any
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/2.0/contact/42":
			w.Write([]byte(`{"id": 42, "name_1": "Acme AG", "contact_type_id": 1, "user_id": 1, "owner_id": 1, "nr": "10001"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/2.0/contact/42":
			sent = decodeBody(t, r)
			w.Write([]byte(`{"id": 42}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name: "update_contact",
		Arguments: map[string]any{
			"contact_id": float64(42),
			"email":      "new@acme.ch",
		},
	})
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}

	if sent["mail"] != "new@acme.ch" {
		t.Errorf("mail = %v, want the aliased email", sent["mail"])
	}
	if sent["name_1"] != "Acme AG" || sent["nr"] != "10001" {
		t.Errorf("existing fields not preserved: %v", sent)
	}
	if _, ok := sent["contact_id"]; ok {
		t.Error("contact_id is a control argument, not a payload field")
	}
}

func TestGetToolRequiresID(t *testing.T) {
	registry := newTestRegistry(t, http.NotFoundHandler())

	result := registry.Execute(context.Background(), ToolCall{Name: "get_contact", Arguments: map[string]any{}})
	if result.Success {
		t.Fatal("expected an error for the missing id")
	}
	if !strings.Contains(result.Error, "id") {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestDeleteTimesheet(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/2.0/timesheet/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`true`))
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name:      "delete_timesheet",
		Arguments: map[string]any{"id": float64(7)},
	})
	if !result.Success {
		t.Fatalf("Execute() failed: %s", result.Error)
	}
	if !strings.Contains(result.Output, `"deleted_id": 7`) {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestAuthErrorGuidance(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid access token"}`))
	}))

	result := registry.Execute(context.Background(), ToolCall{
		Name:      "list_contacts",
		Arguments: map[string]any{},
	})
	if result.Success {
		t.Fatal("expected an auth failure")
	}
	if !strings.Contains(result.Error, "BEXIO_ACCESS_TOKEN") {
		t.Errorf("Error = %q, want token guidance", result.Error)
	}
}

func TestRemoteValidationErrorGuidance(t *testing.T) {
	registry := newTestRegistry(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "invalid", "errors": ["name_1: This value should not be blank."]}`))
	}))

	// name_1 is present locally, so the remote rejection is what surfaces
	result := registry.Execute(context.Background(), ToolCall{
		Name:      "create_contact",
		Arguments: map[string]any{"name_1": " "},
	})
	if result.Success {
		t.Fatal("expected a validation failure")
	}
	if !strings.Contains(result.Error, "name_1") {
		t.Errorf("Error = %q, want field-level guidance", result.Error)
	}
}

func TestSearchToolRequiresCriteria(t *testing.T) {
	registry := newTestRegistry(t, http.NotFoundHandler())

	result := registry.Execute(context.Background(), ToolCall{
		Name:      "search_contacts",
		Arguments: map[string]any{"criteria": []any{}},
	})
	if result.Success {
		t.Fatal("expected an error for empty criteria")
	}
}
