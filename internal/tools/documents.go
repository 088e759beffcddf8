package tools

import (
	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/fieldspec"
)

func positionItems() *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"text":       prop("string", "Line item description (required)"),
		"amount":     prop("number", "Quantity (defaults to 1)"),
		"unit_price": prop("number", "Price per unit (defaults to 0)"),
		"type":       prop("string", "Position type (defaults to KbPositionCustom)"),
		"tax_id":     prop("integer", "Tax id (defaults to the active 0% rate)"),
	})
}

func documentSchema(positionsDesc string) *JSONSchema {
	return objectSchema(map[string]*JSONSchema{
		"contact_id": prop("integer", "Id of the contact the document is for (required)"),
		"title":      prop("string", "Document title"),
		"user_id":    prop("integer", "Responsible user id (defaults to 1)"),
		"positions":  arrayProp(positionsDesc, positionItems()),
	})
}

func registerInvoiceTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	r.Register(newListTool("list_invoices", "List invoices", c.ListInvoices))
	r.Register(newGetTool("get_invoice", "Fetch one invoice by id", "invoice", c.GetInvoice))
	r.Register(newCreateTool("create_invoice",
		"Create an invoice. Needs contact_id and at least one position; each position only needs a text.",
		documentSchema("Line items; at least one is required"),
		fieldspec.Invoice, e, c.CreateInvoice))
	r.Register(newSearchTool("search_invoices", "Search invoices by field criteria",
		`[{"field": "title", "value": "Consulting", "criteria": "like"}]`, c.SearchInvoices))
}

func registerQuoteTools(r *Registry, c *bexio.Client, e *completion.Engine) {
	r.Register(newListTool("list_quotes", "List quotes (offers)", c.ListQuotes))
	r.Register(newGetTool("get_quote", "Fetch one quote by id", "quote", c.GetQuote))
	r.Register(newCreateTool("create_quote",
		"Create a quote. Needs contact_id; positions are optional and completed like invoice positions.",
		documentSchema("Line items; optional on quotes"),
		fieldspec.Quote, e, c.CreateQuote))
	r.Register(newSearchTool("search_quotes", "Search quotes by field criteria",
		`[{"field": "title", "value": "Offer", "criteria": "like"}]`, c.SearchQuotes))
}
