package tools

import (
	"context"
	"encoding/json"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/fieldspec"
)

func registerAccountingTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	// chart of accounts
	r.Register(newListTool("list_accounts", "List the chart of accounts", c.ListAccounts))
	r.Register(newGetTool("get_account", "Fetch one account by id", "account", c.GetAccount))
	r.Register(newSearchTool("search_accounts", "Search accounts by field criteria",
		`[{"field": "name", "value": "Bank", "criteria": "like"}]`, c.SearchAccounts))
	r.Register(newListTool("list_account_groups", "List account groups", c.ListAccountGroups))
	r.Register(newGetTool("get_account_group", "Fetch one account group by id", "account group", c.GetAccountGroup))

	// taxes
	r.Register(newListTool("list_taxes", "List tax rates",
		func(ctx context.Context, p bexio.ListParams) (json.RawMessage, error) {
			taxes, err := c.ListTaxes(ctx, p)
			if err != nil {
				return nil, err
			}
			return json.Marshal(taxes)
		}))
	r.Register(newGetTool("get_tax", "Fetch one tax rate by id", "tax", c.GetTax))

	// currencies
	r.Register(newListTool("list_currencies", "List currencies", c.ListCurrencies))
	r.Register(newGetTool("get_currency", "Fetch one currency by id", "currency", c.GetCurrency))
	r.Register(newRawCreateTool("create_currency", "Create a currency",
		objectSchema(map[string]*JSONSchema{
			"name":         prop("string", "ISO currency code, e.g. EUR"),
			"round_factor": prop("number", "Rounding factor, e.g. 0.05"),
		}, "name"),
		c.CreateCurrency))
	r.Register(&exchangeRatesTool{BaseTool: BaseTool{Def: ToolDefinition{
		Name:        "get_exchange_rates",
		Description: "Fetch currency exchange rates, optionally for a given date",
		InputSchema: objectSchema(map[string]*JSONSchema{
			"date": prop("string", "Date in YYYY-MM-DD format (defaults to today)"),
		}),
	}}, client: c})

	// manual entries and the journal
	r.Register(newListTool("list_manual_entries", "List manual accounting entries", c.ListManualEntries))
	r.Register(newGetTool("get_manual_entry", "Fetch one manual entry by id", "manual entry", c.GetManualEntry))
	r.Register(newCreateTool("create_manual_entry",
		"Create a manual accounting entry (booking). Needs date and at least one entry line; "+
			"type defaults to manual_single_entry and reference_nr is fetched when omitted.",
		manualEntrySchema(), fieldspec.ManualEntry, e, c.CreateManualEntry))
	r.Register(&nextReferenceTool{BaseTool: BaseTool{Def: ToolDefinition{
		Name:        "get_next_reference_number",
		Description: "Fetch the next unused reference number for manual entries",
		InputSchema: objectSchema(nil),
	}}, client: c})
	r.Register(&journalTool{BaseTool: BaseTool{Def: ToolDefinition{
		Name:        "get_journal",
		Description: "Fetch the accounting journal, optionally filtered by date range and account",
		InputSchema: objectSchema(map[string]*JSONSchema{
			"from":         prop("string", "Start date in YYYY-MM-DD format"),
			"to":           prop("string", "End date in YYYY-MM-DD format"),
			"account_uuid": prop("string", "Restrict to one account"),
			"limit":        prop("integer", "Maximum number of rows (defaults to 500)"),
			"offset":       prop("integer", "Number of rows to skip"),
		}),
	}}, client: c})

	// fiscal periods
	r.Register(newListTool("list_business_years", "List business years", c.ListBusinessYears))
	r.Register(newGetTool("get_business_year", "Fetch one business year by id", "business year", c.GetBusinessYear))
	r.Register(newListTool("list_calendar_years", "List calendar years", c.ListCalendarYears))
	r.Register(newGetTool("get_calendar_year", "Fetch one calendar year by id", "calendar year", c.GetCalendarYear))
	r.Register(newRawCreateTool("create_calendar_year", "Create a calendar year",
		objectSchema(map[string]*JSONSchema{
			"start": prop("string", "Start date in YYYY-MM-DD format"),
			"end":   prop("string", "End date in YYYY-MM-DD format"),
		}, "start", "end"),
		c.CreateCalendarYear))
	r.Register(newListTool("list_vat_periods", "List VAT periods", c.ListVatPeriods))
	r.Register(newGetTool("get_vat_period", "Fetch one VAT period by id", "VAT period", c.GetVatPeriod))
}

func manualEntrySchema() *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"date": prop("string", "Booking date in YYYY-MM-DD format (required)"),
		"type": {
			Type:        "string",
			Description: "Entry type (defaults to manual_single_entry)",
			Enum:        []string{fieldspec.ManualSingleEntry, fieldspec.ManualCompoundEntry, fieldspec.ManualGroupEntry},
		},
		"reference_nr": prop("string", "Booking reference (fetched automatically when omitted)"),
		"entries": arrayProp("Booking lines; at least one is required",
			objectSchema(map[string]*JSONSchema{
				"amount":            prop("number", "Booking amount (required)"),
				"debit_account_id":  prop("integer", "Debit account id"),
				"credit_account_id": prop("integer", "Credit account id"),
				"tax_id":            prop("integer", "Tax id for the line"),
				"description":       prop("string", "Line description"),
			})),
	})
}

type exchangeRatesTool struct {
	BaseTool
	client *bexio.Client
}

func (t *exchangeRatesTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	raw, err := t.client.GetExchangeRates(ctx, stringArg(args, "date"))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}

type nextReferenceTool struct {
	BaseTool
	client *bexio.Client
}

func (t *nextReferenceTool) Execute(ctx context.Context, _ map[string]any) ToolResult {
	ref, err := t.client.NextReferenceNumber(ctx)
	if err != nil {
		return errorResult(err)
	}
	out, _ := json.Marshal(map[string]string{"next_ref_nr": ref})
	return rawResult(out)
}

type journalTool struct {
	BaseTool
	client *bexio.Client
}

func (t *journalTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	raw, err := t.client.GetJournal(ctx,
		stringArg(args, "from"), stringArg(args, "to"), stringArg(args, "account_uuid"),
		listParamsArg(args))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(raw)
}
