package fieldspec

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		kind    ResourceKind
		field   string
		want    Classification
		wantErr error
	}{
		{name: "contact required", kind: Contact, field: "name_1", want: RequiredUserInput},
		{name: "contact default", kind: Contact, field: "contact_type_id", want: AutoFillDefault},
		{name: "contact api handled", kind: Contact, field: "nr", want: APIHandled},
		{name: "invoice required", kind: Invoice, field: "contact_id", want: RequiredUserInput},
		{name: "position lookup", kind: Position, field: "tax_id", want: AutoFillLookup},
		{name: "manual entry lookup", kind: ManualEntry, field: "reference_nr", want: AutoFillLookup},
		{name: "unknown field", kind: Contact, field: "favourite_colour", wantErr: ErrUnknownField},
		{name: "unknown kind", kind: ResourceKind(99), field: "x", wantErr: ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.kind, tt.field)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRulesDeclareDefaults(t *testing.T) {
	rs, err := Rules(Item)
	if err != nil {
		t.Fatalf("Rules() error: %v", err)
	}

	defaults := map[string]any{}
	for _, f := range rs.Fields {
		if f.Tag == AutoFillDefault {
			defaults[f.Name] = f.Default
		}
	}

	want := map[string]any{
		"user_id":         1,
		"article_type_id": 1,
		"currency_id":     1,
		"is_stock":        false,
		"delivery_price":  0,
	}
	for name, val := range want {
		got, ok := defaults[name]
		if !ok {
			t.Errorf("Rules(Item) missing default for %s", name)
			continue
		}
		if got != val {
			t.Errorf("Rules(Item) default %s = %v, want %v", name, got, val)
		}
	}
}

func TestUpdateRulesContactPreservesRequiredFields(t *testing.T) {
	rs, err := UpdateRules(Contact)
	if err != nil {
		t.Fatalf("UpdateRules() error: %v", err)
	}

	for _, name := range []string{"name_1", "contact_type_id", "user_id", "owner_id", "nr"} {
		found := false
		for _, f := range rs.Fields {
			if f.Name == name {
				found = true
				if f.Tag != AutoFillLookup {
					t.Errorf("UpdateRules(Contact) %s tag = %v, want AutoFillLookup", name, f.Tag)
				}
				if f.Lookup.Kind != LookupExistingRecord {
					t.Errorf("UpdateRules(Contact) %s lookup kind = %v, want LookupExistingRecord", name, f.Lookup.Kind)
				}
			}
		}
		if !found {
			t.Errorf("UpdateRules(Contact) missing field %s", name)
		}
	}
}

func TestUpdateRulesFallsBackToCreateRules(t *testing.T) {
	rs, err := UpdateRules(Invoice)
	if err != nil {
		t.Fatalf("UpdateRules() error: %v", err)
	}
	if rs.Lines == nil || rs.Lines.Field != "positions" {
		t.Error("UpdateRules(Invoice) should carry the invoice line rule")
	}
}

func TestLineRules(t *testing.T) {
	inv, _ := Rules(Invoice)
	if inv.Lines == nil || !inv.Lines.Required {
		t.Error("invoice positions should be required")
	}

	quote, _ := Rules(Quote)
	if quote.Lines == nil || quote.Lines.Required {
		t.Error("quote positions should be optional")
	}

	entry, _ := Rules(ManualEntry)
	if entry.Lines == nil || !entry.Lines.Required || entry.Lines.Field != "entries" {
		t.Error("manual entry lines should be required under 'entries'")
	}
}
