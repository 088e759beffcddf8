package tools

import (
	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
)

// NewBexioRegistry builds a registry with the full Bexio tool surface wired
// to one API client and one completion engine.
func NewBexioRegistry(client *bexio.Client, engine *completion.Engine) *Registry {
	r := NewRegistry()
	registerContactTools(r, client, engine)
	registerInvoiceTools(r, client, engine)
	registerQuoteTools(r, client, engine)
	registerProjectTools(r, client, engine)
	registerItemTools(r, client, engine)
	registerAccountingTools(r, client, engine)
	registerTimeTrackingTools(r, client)
	registerServiceTools(r, client)
	return r
}
