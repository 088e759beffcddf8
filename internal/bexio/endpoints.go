package bexio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ListParams are the pagination controls shared by Bexio list endpoints.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy string
}

// Values encodes the parameters, substituting defaultLimit when unset.
func (p ListParams) Values(defaultLimit int) url.Values {
	v := url.Values{}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	if p.OrderBy != "" {
		v.Set("order_by", p.OrderBy)
	}
	return v
}

// Criterion is one condition of a Bexio search payload.
type Criterion struct {
	Field    string `json:"field"`
	Value    any    `json:"value"`
	Criteria string `json:"criteria"`
}

// FilterByCriteria applies =/like criteria to a result batch client-side.
// Used as a fallback when a search endpoint rejects the criteria payload.
// Dotted field names traverse nested objects; unknown operators exclude.
func FilterByCriteria(items []map[string]any, criteria []Criterion) []map[string]any {
	matches := func(item map[string]any) bool {
		for _, cond := range criteria {
			if cond.Field == "" {
				return false
			}
			var actual any = item
			for _, part := range strings.Split(cond.Field, ".") {
				m, ok := actual.(map[string]any)
				if !ok {
					actual = nil
					break
				}
				actual = m[part]
			}
			op := strings.ToLower(cond.Criteria)
			if op == "" {
				op = "="
			}
			switch op {
			case "=":
				if fmt.Sprint(actual) != fmt.Sprint(cond.Value) {
					return false
				}
			case "like":
				if cond.Value == nil {
					return false
				}
				if !strings.Contains(strings.ToLower(fmt.Sprint(actual)), strings.ToLower(fmt.Sprint(cond.Value))) {
					return false
				}
			default:
				return false
			}
		}
		return true
	}

	var out []map[string]any
	for _, it := range items {
		if matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// searchWithFallback posts criteria to a search endpoint and, when the
// remote rejects the payload shape, retries with a wrapped {"criteria": ...}
// body and finally falls back to listing a batch and filtering client-side.
func (c *Client) searchWithFallback(ctx context.Context, searchEndpoint, listEndpoint string, criteria []Criterion) (json.RawMessage, error) {
	raw, err := c.Post(ctx, searchEndpoint, criteria)
	if err == nil {
		return raw, nil
	}

	raw, err = c.Post(ctx, searchEndpoint, map[string]any{"criteria": criteria})
	if err == nil {
		return raw, nil
	}

	batch, err := c.Get(ctx, listEndpoint, ListParams{Limit: 200}.Values(200))
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	if err := json.Unmarshal(batch, &items); err != nil {
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}
	filtered := FilterByCriteria(items, criteria)
	if filtered == nil {
		filtered = []map[string]any{}
	}
	return json.Marshal(filtered)
}

// normalizeContact maps the common 'email' alias to the 'mail' key the
// Bexio contact endpoints expect.
func normalizeContact(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	if email, ok := out["email"]; ok {
		if _, exists := out["mail"]; !exists {
			out["mail"] = email
		}
		delete(out, "email")
	}
	return out
}

// Contacts

func (c *Client) ListContacts(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/contact", p.Values(50))
}

// GetContact fetches one contact as a decoded record so lookups can extract
// individual fields and updates can merge against current state.
func (c *Client) GetContact(ctx context.Context, id int) (map[string]any, error) {
	raw, err := c.Get(ctx, fmt.Sprintf("/2.0/contact/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to parse contact: %w", err)
	}
	return record, nil
}

func (c *Client) CreateContact(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/contact", normalizeContact(data))
}

func (c *Client) UpdateContact(ctx context.Context, id int, data map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, fmt.Sprintf("/2.0/contact/%d", id), normalizeContact(data))
}

func (c *Client) SearchContacts(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/contact/search", criteria)
}

// Invoices

func (c *Client) ListInvoices(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/kb_invoice", p.Values(50))
}

func (c *Client) GetInvoice(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/kb_invoice/%d", id), nil)
}

func (c *Client) CreateInvoice(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/kb_invoice", data)
}

func (c *Client) SearchInvoices(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.searchWithFallback(ctx, "/2.0/kb_invoice/search", "/2.0/kb_invoice", criteria)
}

// Quotes

func (c *Client) ListQuotes(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/kb_offer", p.Values(50))
}

func (c *Client) GetQuote(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/kb_offer/%d", id), nil)
}

func (c *Client) CreateQuote(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/kb_offer", data)
}

func (c *Client) SearchQuotes(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.searchWithFallback(ctx, "/2.0/kb_offer/search", "/2.0/kb_offer", criteria)
}

// Projects

func (c *Client) ListProjects(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/pr_project", p.Values(50))
}

func (c *Client) GetProject(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/pr_project/%d", id), nil)
}

func (c *Client) CreateProject(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/pr_project", data)
}

// Items (articles)

func (c *Client) ListItems(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/article", p.Values(50))
}

func (c *Client) GetItem(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/article/%d", id), nil)
}

func (c *Client) CreateItem(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/article", data)
}

// Accounts (chart of accounts)

func (c *Client) ListAccounts(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/accounts", p.Values(100))
}

func (c *Client) GetAccount(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/accounts/%d", id), nil)
}

func (c *Client) SearchAccounts(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/accounts/search", criteria)
}

func (c *Client) ListAccountGroups(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/account_groups", p.Values(50))
}

func (c *Client) GetAccountGroup(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/account_groups/%d", id), nil)
}

// Taxes

// Tax is one row of the tenant's tax-rate list. Ids are tenant-specific,
// so defaults are always selected by value.
type Tax struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Value       float64 `json:"value"`
	IsActive    bool    `json:"is_active"`
	DisplayName string  `json:"display_name"`
}

func (c *Client) ListTaxes(ctx context.Context, p ListParams) ([]Tax, error) {
	raw, err := c.Get(ctx, "/3.0/taxes", p.Values(50))
	if err != nil {
		return nil, err
	}
	var taxes []Tax
	if err := json.Unmarshal(raw, &taxes); err != nil {
		return nil, fmt.Errorf("failed to parse tax list: %w", err)
	}
	return taxes, nil
}

func (c *Client) GetTax(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/taxes/%d", id), nil)
}

// Currencies

func (c *Client) ListCurrencies(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/3.0/currencies", p.Values(50))
}

func (c *Client) GetCurrency(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/currencies/%d", id), nil)
}

func (c *Client) CreateCurrency(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/3.0/currencies", data)
}

func (c *Client) GetExchangeRates(ctx context.Context, date string) (json.RawMessage, error) {
	params := url.Values{}
	if date != "" {
		params.Set("date", date)
	}
	return c.Get(ctx, "/3.0/currencies/exchange_rates", params)
}

// Manual entries (accounting journal)

func (c *Client) ListManualEntries(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/3.0/accounting/manual_entries", p.Values(50))
}

func (c *Client) GetManualEntry(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/accounting/manual_entries/%d", id), nil)
}

func (c *Client) CreateManualEntry(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/3.0/accounting/manual_entries", data)
}

// NextReferenceNumber fetches the next unused reference for journal bookings.
func (c *Client) NextReferenceNumber(ctx context.Context) (string, error) {
	raw, err := c.Get(ctx, "/3.0/accounting/manual_entries/reference_number", nil)
	if err != nil {
		return "", err
	}
	var parsed struct {
		NextRefNr string `json:"next_ref_nr"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse reference number: %w", err)
	}
	return parsed.NextRefNr, nil
}

// Journal report (read-only ledger)

func (c *Client) GetJournal(ctx context.Context, from, to, accountUUID string, p ListParams) (json.RawMessage, error) {
	params := p.Values(500)
	if from != "" {
		params.Set("from", from)
	}
	if to != "" {
		params.Set("to", to)
	}
	if accountUUID != "" {
		params.Set("account_uuid", accountUUID)
	}
	return c.Get(ctx, "/3.0/accounting/journal", params)
}

// Business years, calendar years, VAT periods

func (c *Client) ListBusinessYears(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/3.0/accounting/business_years", p.Values(50))
}

func (c *Client) GetBusinessYear(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/accounting/business_years/%d", id), nil)
}

func (c *Client) ListCalendarYears(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/3.0/accounting/calendar_years", p.Values(50))
}

func (c *Client) GetCalendarYear(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/accounting/calendar_years/%d", id), nil)
}

func (c *Client) CreateCalendarYear(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/3.0/accounting/calendar_years", data)
}

func (c *Client) ListVatPeriods(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/3.0/accounting/vat_periods", p.Values(50))
}

func (c *Client) GetVatPeriod(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/3.0/accounting/vat_periods/%d", id), nil)
}

// Timesheets

func (c *Client) ListTimesheets(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/timesheet", p.Values(50))
}

func (c *Client) GetTimesheet(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/timesheet/%d", id), nil)
}

func (c *Client) CreateTimesheet(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/timesheet", data)
}

func (c *Client) UpdateTimesheet(ctx context.Context, id int, data map[string]any) (json.RawMessage, error) {
	return c.Put(ctx, fmt.Sprintf("/2.0/timesheet/%d", id), data)
}

func (c *Client) DeleteTimesheet(ctx context.Context, id int) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/2.0/timesheet/%d", id))
	return err
}

func (c *Client) SearchTimesheets(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.searchWithFallback(ctx, "/2.0/timesheet/search", "/2.0/timesheet", criteria)
}

func (c *Client) ListTimesheetStatuses(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/timesheet_status", nil)
}

func (c *Client) GetTimesheetStatus(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/timesheet_status/%d", id), nil)
}

// Client services

func (c *Client) ListClientServices(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/client_service", p.Values(50))
}

func (c *Client) GetClientService(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/client_service/%d", id), nil)
}

func (c *Client) CreateClientService(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/client_service", data)
}

func (c *Client) SearchClientServices(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/client_service/search", criteria)
}

// Business activities

func (c *Client) ListBusinessActivities(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.Get(ctx, "/2.0/business_activity", p.Values(50))
}

func (c *Client) GetBusinessActivity(ctx context.Context, id int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf("/2.0/business_activity/%d", id), nil)
}

func (c *Client) CreateBusinessActivity(ctx context.Context, data map[string]any) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/business_activity", data)
}

func (c *Client) SearchBusinessActivities(ctx context.Context, criteria []Criterion) (json.RawMessage, error) {
	return c.Post(ctx, "/2.0/business_activity/search", criteria)
}
