package completion

import (
	"context"
	"errors"
	"fmt"

	"bexmcp/internal/bexio"
	"bexmcp/internal/fieldspec"
)

// ErrLookupNotFound reports that a remote read succeeded but produced no
// usable value (missing record, no matching tax rate, absent field).
var ErrLookupNotFound = errors.New("lookup produced no value")

// Scope carries the per-request context a lookup may need. One Scope lives
// for one completion, so providers may memoize fetched state on it.
type Scope struct {
	// RecordID is the id of the record being updated, when applicable.
	RecordID int

	record map[string]any // fetched once per completion
}

// LookupProvider resolves AutoFillLookup fields against the remote system.
type LookupProvider interface {
	Lookup(ctx context.Context, key fieldspec.LookupKey, scope *Scope) (any, error)
}

// RemoteReader is the slice of the Bexio client that lookups need.
// Satisfied by *bexio.Client.
type RemoteReader interface {
	GetContact(ctx context.Context, id int) (map[string]any, error)
	ListTaxes(ctx context.Context, p bexio.ListParams) ([]bexio.Tax, error)
	NextReferenceNumber(ctx context.Context) (string, error)
}

// TaxSelector picks the tax rate used for auto-filled position tax ids.
type TaxSelector func(bexio.Tax) bool

// DefaultTaxSelector matches the first active 0% rate. Tax ids differ per
// tenant, so the id is always resolved by rate, never hardcoded.
func DefaultTaxSelector(t bexio.Tax) bool {
	return t.IsActive && t.Value == 0
}

// BexioLookup resolves lookups against the live Bexio API.
type BexioLookup struct {
	reader    RemoteReader
	selectTax TaxSelector
}

// NewBexioLookup creates a lookup provider. A nil selector uses
// DefaultTaxSelector.
func NewBexioLookup(reader RemoteReader, selectTax TaxSelector) *BexioLookup {
	if selectTax == nil {
		selectTax = DefaultTaxSelector
	}
	return &BexioLookup{reader: reader, selectTax: selectTax}
}

func (l *BexioLookup) Lookup(ctx context.Context, key fieldspec.LookupKey, scope *Scope) (any, error) {
	switch key.Kind {
	case fieldspec.LookupExistingRecord:
		return l.existingRecordField(ctx, key.Field, scope)
	case fieldspec.LookupDefaultTax:
		return l.defaultTaxID(ctx)
	case fieldspec.LookupNextReference:
		ref, err := l.reader.NextReferenceNumber(ctx)
		if err != nil {
			return nil, err
		}
		if ref == "" {
			return nil, fmt.Errorf("%w: empty reference number", ErrLookupNotFound)
		}
		return ref, nil
	}
	return nil, fmt.Errorf("%w: unknown lookup kind %d", ErrLookupNotFound, key.Kind)
}

func (l *BexioLookup) existingRecordField(ctx context.Context, field string, scope *Scope) (any, error) {
	if scope.RecordID == 0 {
		return nil, fmt.Errorf("%w: no record id in scope", ErrLookupNotFound)
	}
	if scope.record == nil {
		record, err := l.reader.GetContact(ctx, scope.RecordID)
		if err != nil {
			var apiErr *bexio.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
				return nil, fmt.Errorf("%w: contact %d", ErrLookupNotFound, scope.RecordID)
			}
			return nil, err
		}
		scope.record = record
	}
	val, ok := scope.record[field]
	if !ok || val == nil {
		return nil, fmt.Errorf("%w: contact %d has no %s", ErrLookupNotFound, scope.RecordID, field)
	}
	return val, nil
}

func (l *BexioLookup) defaultTaxID(ctx context.Context) (any, error) {
	taxes, err := l.reader.ListTaxes(ctx, bexio.ListParams{Limit: 500})
	if err != nil {
		return nil, err
	}
	for _, t := range taxes {
		if l.selectTax(t) {
			return t.ID, nil
		}
	}
	return nil, fmt.Errorf("%w: no tax rate matched the selector", ErrLookupNotFound)
}
