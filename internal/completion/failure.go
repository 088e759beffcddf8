package completion

import (
	"fmt"
	"strings"
)

// FailureKind classifies one field-level validation problem.
type FailureKind int

const (
	MissingRequiredField FailureKind = iota
	InvalidFieldValue
	LookupNotFound
)

func (k FailureKind) String() string {
	switch k {
	case MissingRequiredField:
		return "missing_required_field"
	case InvalidFieldValue:
		return "invalid_field_value"
	case LookupNotFound:
		return "lookup_not_found"
	}
	return "unknown"
}

// FieldError is one problem with one field, with actionable guidance.
type FieldError struct {
	Field    string
	Kind     FailureKind
	Guidance string
}

// ValidationFailure aggregates every field problem found for one request.
// It is produced both by the completion engine (pre-call) and by the error
// translator (post-call), so callers see one error shape either way.
type ValidationFailure struct {
	Fields []FieldError
}

func (f *ValidationFailure) add(field string, kind FailureKind, guidance string) {
	f.Fields = append(f.Fields, FieldError{Field: field, Kind: kind, Guidance: guidance})
}

// Missing returns the names of all fields reported as missing.
func (f *ValidationFailure) Missing() []string {
	var names []string
	for _, fe := range f.Fields {
		if fe.Kind == MissingRequiredField {
			names = append(names, fe.Field)
		}
	}
	return names
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, 0, len(f.Fields))
	for _, fe := range f.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field, fe.Kind))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Guidance renders the failure as one actionable line per field.
func (f *ValidationFailure) Guidance() string {
	var sb strings.Builder
	sb.WriteString("Validation failed:\n")
	for _, fe := range f.Fields {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", fe.Field, fe.Guidance))
	}
	return sb.String()
}

// fieldGuidance tells the caller what to supply and where to find a valid
// value. Keyed by the bare field name (line prefixes are stripped first).
var fieldGuidance = map[string]string{
	"name_1":            "Provide the company or first name as name_1.",
	"name":              "Provide a name.",
	"intern_name":       "Provide the internal item name as intern_name.",
	"contact_id":        "Provide a contact_id. Use search_contacts to find the right contact.",
	"positions":         `Provide at least one position, e.g. [{"text": "Consulting"}]. Type, amount, unit_price and tax_id are filled in when missing.`,
	"entries":           "Provide at least one booking line with an amount and account ids from the chart of accounts (see list_accounts).",
	"text":              "Each position needs a text describing the line item.",
	"amount":            "Each booking line needs an amount.",
	"date":              "Provide the booking date in YYYY-MM-DD format.",
	"debit_account_id":  "Provide the debit account id from the chart of accounts (see list_accounts).",
	"credit_account_id": "Provide the credit account id from the chart of accounts (see list_accounts).",
	"tax_id":            "No matching default tax rate was found. Use list_taxes to pick a valid tax_id.",
	"reference_nr":      "The next reference number could not be fetched. Supply reference_nr explicitly or retry.",
	"user_id":           "Provide a user_id, or omit it to use the default user.",
}

func guidanceFor(field string, kind FailureKind) string {
	name := field
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if g, ok := fieldGuidance[name]; ok {
		return g
	}
	switch kind {
	case MissingRequiredField:
		return fmt.Sprintf("Field %s is required and must be supplied by the caller.", field)
	case LookupNotFound:
		return fmt.Sprintf("Field %s could not be resolved from the remote system.", field)
	default:
		return fmt.Sprintf("Field %s has an invalid value.", field)
	}
}
