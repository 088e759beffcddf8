package completion

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"bexmcp/internal/fieldspec"
)

// fakeLookup serves canned lookup values without touching the network.
type fakeLookup struct {
	values map[fieldspec.LookupKey]any
	err    error
	calls  int
}

func (f *fakeLookup) Lookup(_ context.Context, key fieldspec.LookupKey, _ *Scope) (any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: no fake value", ErrLookupNotFound)
}

func newTestEngine() (*Engine, *fakeLookup) {
	fake := &fakeLookup{values: map[fieldspec.LookupKey]any{
		{Kind: fieldspec.LookupDefaultTax}:    17,
		{Kind: fieldspec.LookupNextReference}: "B-00042",
	}}
	return NewEngine(fake), fake
}

func TestCompleteContactFillsDefaults(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Contact, map[string]any{"name_1": "Acme AG"})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	want := map[string]any{
		"name_1":          "Acme AG",
		"contact_type_id": 2,
		"user_id":         1,
		"owner_id":        1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Complete() = %v, want %v", got, want)
	}
}

func TestCompleteCallerValueWins(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Contact, map[string]any{
		"name_1":          "Acme AG",
		"contact_type_id": 1,
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got["contact_type_id"] != 1 {
		t.Errorf("contact_type_id = %v, want caller value 1", got["contact_type_id"])
	}
}

func TestCompleteNullCountsAsAbsent(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Contact, map[string]any{
		"name_1":          "Acme AG",
		"contact_type_id": nil,
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got["contact_type_id"] != 2 {
		t.Errorf("contact_type_id = %v, want default 2 for explicit null", got["contact_type_id"])
	}
}

func TestCompleteMissingRequiredField(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Complete(context.Background(), fieldspec.Contact, map[string]any{"mail": "info@acme.ch"})

	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *ValidationFailure", err)
	}
	if missing := failure.Missing(); len(missing) != 1 || missing[0] != "name_1" {
		t.Errorf("Missing() = %v, want [name_1]", missing)
	}
	if failure.Fields[0].Guidance == "" {
		t.Error("field error should carry guidance")
	}
}

func TestCompleteUnknownFieldsPassThrough(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Contact, map[string]any{
		"name_1":        "Acme AG",
		"custom_field":  "kept",
		"another_extra": 42,
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got["custom_field"] != "kept" || got["another_extra"] != 42 {
		t.Errorf("unknown fields were not passed through: %v", got)
	}
}

func TestCompleteDoesNotMutateInput(t *testing.T) {
	engine, _ := newTestEngine()

	in := map[string]any{"name_1": "Acme AG"}
	if _, err := engine.Complete(context.Background(), fieldspec.Contact, in); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if len(in) != 1 {
		t.Errorf("input map was mutated: %v", in)
	}
}

func TestCompleteInvoicePositions(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"contact_id": 7,
		"positions":  []any{map[string]any{"text": "Consulting"}},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	positions := got["positions"].([]any)
	pos := positions[0].(map[string]any)
	want := map[string]any{
		"text":       "Consulting",
		"type":       "KbPositionCustom",
		"amount":     1,
		"unit_price": 0.0,
		"tax_id":     17,
	}
	if !reflect.DeepEqual(pos, want) {
		t.Errorf("position = %v, want %v", pos, want)
	}
	if got["user_id"] != 1 {
		t.Errorf("user_id = %v, want default 1", got["user_id"])
	}
}

func TestCompleteInvoiceRequiresPositions(t *testing.T) {
	engine, _ := newTestEngine()

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"absent", map[string]any{"contact_id": 7}},
		{"empty", map[string]any{"contact_id": 7, "positions": []any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Complete(context.Background(), fieldspec.Invoice, tt.fields)
			var failure *ValidationFailure
			if !errors.As(err, &failure) {
				t.Fatalf("error = %v, want *ValidationFailure", err)
			}
			if missing := failure.Missing(); len(missing) != 1 || missing[0] != "positions" {
				t.Errorf("Missing() = %v, want [positions]", missing)
			}
		})
	}
}

func TestCompleteInvoiceMissingContactID(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"positions": []any{map[string]any{"text": "Consulting"}},
	})
	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *ValidationFailure", err)
	}
	if missing := failure.Missing(); len(missing) != 1 || missing[0] != "contact_id" {
		t.Errorf("Missing() = %v, want [contact_id]", missing)
	}
}

func TestCompleteQuotePositionsOptional(t *testing.T) {
	engine, _ := newTestEngine()

	got, err := engine.Complete(context.Background(), fieldspec.Quote, map[string]any{"contact_id": 7})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if _, ok := got["positions"]; ok {
		t.Errorf("positions should stay absent on a quote: %v", got)
	}
}

func TestCompletePositionTextRequired(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"contact_id": 7,
		"positions":  []any{map[string]any{"unit_price": 150.0}},
	})
	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *ValidationFailure", err)
	}
	if missing := failure.Missing(); len(missing) != 1 || missing[0] != "positions[0].text" {
		t.Errorf("Missing() = %v, want [positions[0].text]", missing)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine()

	first, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"contact_id": 7,
		"positions":  []any{map[string]any{"text": "Consulting"}},
	})
	if err != nil {
		t.Fatalf("first Complete() error: %v", err)
	}
	second, err := engine.Complete(context.Background(), fieldspec.Invoice, first)
	if err != nil {
		t.Fatalf("second Complete() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("completion is not idempotent:\nfirst  = %v\nsecond = %v", first, second)
	}
}

func TestCompleteLookupNotFound(t *testing.T) {
	engine := NewEngine(&fakeLookup{values: map[fieldspec.LookupKey]any{}})

	_, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"contact_id": 7,
		"positions":  []any{map[string]any{"text": "Consulting"}},
	})
	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *ValidationFailure", err)
	}
	if len(failure.Fields) != 1 || failure.Fields[0].Kind != LookupNotFound {
		t.Fatalf("Fields = %+v, want one lookup_not_found", failure.Fields)
	}
	if failure.Fields[0].Field != "positions[0].tax_id" {
		t.Errorf("Field = %q, want positions[0].tax_id", failure.Fields[0].Field)
	}
}

func TestCompleteLookupTransportErrorAborts(t *testing.T) {
	transportErr := errors.New("connection refused")
	engine := NewEngine(&fakeLookup{err: transportErr})

	_, err := engine.Complete(context.Background(), fieldspec.Invoice, map[string]any{
		"contact_id": 7,
		"positions":  []any{map[string]any{"text": "Consulting"}},
	})
	if !errors.Is(err, transportErr) {
		t.Errorf("error = %v, want wrapped transport error", err)
	}
	var failure *ValidationFailure
	if errors.As(err, &failure) {
		t.Error("transport errors must not be reported as validation failures")
	}
}

func TestCompleteManualEntry(t *testing.T) {
	engine, _ := newTestEngine()

	line := func(fields map[string]any) map[string]any { return fields }

	tests := []struct {
		name        string
		fields      map[string]any
		wantMissing []string
		wantInvalid []string
	}{
		{
			name: "single entry complete",
			fields: map[string]any{
				"date": "2026-03-01",
				"entries": []any{line(map[string]any{
					"amount": 100.0, "debit_account_id": 1, "credit_account_id": 2,
				})},
			},
		},
		{
			name: "single entry needs both sides",
			fields: map[string]any{
				"date": "2026-03-01",
				"entries": []any{line(map[string]any{
					"amount": 100.0, "debit_account_id": 1,
				})},
			},
			wantMissing: []string{"entries[0].credit_account_id"},
		},
		{
			name: "compound entry one side per line",
			fields: map[string]any{
				"date": "2026-03-01",
				"type": fieldspec.ManualCompoundEntry,
				"entries": []any{
					line(map[string]any{"amount": 100.0, "debit_account_id": 1}),
					line(map[string]any{"amount": 100.0, "credit_account_id": 2}),
				},
			},
		},
		{
			name: "compound entry rejects both sides",
			fields: map[string]any{
				"date": "2026-03-01",
				"type": fieldspec.ManualCompoundEntry,
				"entries": []any{line(map[string]any{
					"amount": 100.0, "debit_account_id": 1, "credit_account_id": 2,
				})},
			},
			wantInvalid: []string{"entries[0]"},
		},
		{
			name: "compound entry rejects no sides",
			fields: map[string]any{
				"date": "2026-03-01",
				"type": fieldspec.ManualCompoundEntry,
				"entries": []any{line(map[string]any{"amount": 100.0})},
			},
			wantMissing: []string{"entries[0]"},
		},
		{
			name:        "entries required",
			fields:      map[string]any{"date": "2026-03-01"},
			wantMissing: []string{"entries"},
		},
		{
			name: "line amount required",
			fields: map[string]any{
				"date": "2026-03-01",
				"entries": []any{line(map[string]any{
					"debit_account_id": 1, "credit_account_id": 2,
				})},
			},
			wantMissing: []string{"entries[0].amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Complete(context.Background(), fieldspec.ManualEntry, tt.fields)

			if len(tt.wantMissing) == 0 && len(tt.wantInvalid) == 0 {
				if err != nil {
					t.Fatalf("Complete() error: %v", err)
				}
				if got["type"] == nil {
					t.Error("type should default when absent")
				}
				if got["reference_nr"] != "B-00042" {
					t.Errorf("reference_nr = %v, want looked-up B-00042", got["reference_nr"])
				}
				return
			}

			var failure *ValidationFailure
			if !errors.As(err, &failure) {
				t.Fatalf("error = %v, want *ValidationFailure", err)
			}
			if len(tt.wantMissing) > 0 && !reflect.DeepEqual(failure.Missing(), tt.wantMissing) {
				t.Errorf("Missing() = %v, want %v", failure.Missing(), tt.wantMissing)
			}
			for _, field := range tt.wantInvalid {
				found := false
				for _, fe := range failure.Fields {
					if fe.Field == field && fe.Kind == InvalidFieldValue {
						found = true
					}
				}
				if !found {
					t.Errorf("no invalid_field_value for %s in %+v", field, failure.Fields)
				}
			}
		})
	}
}

func TestCompleteUpdateContactPreservesExisting(t *testing.T) {
	fake := &fakeLookup{values: map[fieldspec.LookupKey]any{
		{Kind: fieldspec.LookupExistingRecord, Field: "name_1"}:          "Acme AG",
		{Kind: fieldspec.LookupExistingRecord, Field: "contact_type_id"}: float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "user_id"}:         float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "owner_id"}:        float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "nr"}:              "10001",
	}}
	engine := NewEngine(fake)

	got, err := engine.CompleteUpdate(context.Background(), fieldspec.Contact, 42, map[string]any{
		"address": "Neue Strasse 1",
	})
	if err != nil {
		t.Fatalf("CompleteUpdate() error: %v", err)
	}

	if got["address"] != "Neue Strasse 1" {
		t.Errorf("address = %v, caller change lost", got["address"])
	}
	if got["name_1"] != "Acme AG" || got["nr"] != "10001" {
		t.Errorf("existing fields not preserved: %v", got)
	}
	if fake.calls != 5 {
		t.Errorf("lookup calls = %d, want 5", fake.calls)
	}
}

func TestCompleteUpdateCallerOverridesLookup(t *testing.T) {
	fake := &fakeLookup{values: map[fieldspec.LookupKey]any{
		{Kind: fieldspec.LookupExistingRecord, Field: "name_1"}:          "Old Name",
		{Kind: fieldspec.LookupExistingRecord, Field: "contact_type_id"}: float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "user_id"}:         float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "owner_id"}:        float64(1),
		{Kind: fieldspec.LookupExistingRecord, Field: "nr"}:              "10001",
	}}
	engine := NewEngine(fake)

	got, err := engine.CompleteUpdate(context.Background(), fieldspec.Contact, 42, map[string]any{
		"name_1": "New Name",
	})
	if err != nil {
		t.Fatalf("CompleteUpdate() error: %v", err)
	}
	if got["name_1"] != "New Name" {
		t.Errorf("name_1 = %v, want caller value New Name", got["name_1"])
	}
}

func TestCompleteUnknownKind(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Complete(context.Background(), fieldspec.ResourceKind(99), map[string]any{})
	if !errors.Is(err, fieldspec.ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}
