// Package fieldspec declares, per Bexio resource kind, how each payload
// field is completed before dispatch: required from the caller, defaulted,
// looked up from existing remote state, or left to the API. The tables are
// data, not code — new resource kinds are added by extending a table.
package fieldspec

// ResourceKind identifies one category of Bexio entity.
type ResourceKind int

const (
	Contact ResourceKind = iota
	Invoice
	Quote
	Project
	Item
	ManualEntry
	Position
)

// String returns the snake_case name used in tool payloads and logs.
func (k ResourceKind) String() string {
	switch k {
	case Contact:
		return "contact"
	case Invoice:
		return "invoice"
	case Quote:
		return "quote"
	case Project:
		return "project"
	case Item:
		return "item"
	case ManualEntry:
		return "manual_entry"
	case Position:
		return "position"
	}
	return "unknown"
}

// Classification tags govern how the completion engine treats a field.
type Classification int

const (
	// RequiredUserInput fields must be supplied by the caller.
	RequiredUserInput Classification = iota

	// AutoFillDefault fields are filled with a safe default when absent.
	AutoFillDefault

	// AutoFillLookup fields are resolved against the remote system when absent.
	AutoFillLookup

	// APIHandled fields are passed through; the remote API defaults them.
	APIHandled
)

// String returns the tag name used in guidance and logs.
func (c Classification) String() string {
	switch c {
	case RequiredUserInput:
		return "required_user_input"
	case AutoFillDefault:
		return "auto_fill_default"
	case AutoFillLookup:
		return "auto_fill_lookup"
	case APIHandled:
		return "api_handled"
	}
	return "unknown"
}

// LookupKind selects which remote read resolves an AutoFillLookup field.
type LookupKind int

const (
	// LookupExistingRecord extracts a field from the record being updated.
	LookupExistingRecord LookupKind = iota

	// LookupDefaultTax selects a tax id from the tenant's tax-rate list by
	// value, never by hardcoded id.
	LookupDefaultTax

	// LookupNextReference fetches the next unused accounting reference number.
	LookupNextReference
)

// LookupKey binds an AutoFillLookup field to a remote read.
type LookupKey struct {
	Kind  LookupKind
	Field string // for LookupExistingRecord: which field to extract
}

// FieldSpec is one row of the classification table. Immutable after init.
type FieldSpec struct {
	Name    string
	Tag     Classification
	Default any       // used when Tag == AutoFillDefault
	Lookup  LookupKey // used when Tag == AutoFillLookup
}

// LineRule describes a nested line-item sequence (invoice/quote positions,
// manual-entry lines) whose elements are completed with their own specs.
type LineRule struct {
	Field    string // payload key holding the sequence
	Required bool   // at least one line must be present
	Fields   []FieldSpec
}

// RuleSet is the full classification rule set for one resource kind.
type RuleSet struct {
	Kind   ResourceKind
	Fields []FieldSpec
	Lines  *LineRule
}

// Manual entry types, as named by the Bexio accounting API.
const (
	ManualSingleEntry   = "manual_single_entry"
	ManualCompoundEntry = "manual_compound_entry"
	ManualGroupEntry    = "manual_group_entry"
)

var positionFields = []FieldSpec{
	{Name: "text", Tag: RequiredUserInput},
	{Name: "type", Tag: AutoFillDefault, Default: "KbPositionCustom"},
	{Name: "amount", Tag: AutoFillDefault, Default: 1},
	{Name: "unit_price", Tag: AutoFillDefault, Default: 0.0},
	{Name: "tax_id", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupDefaultTax}},
}

var entryLineFields = []FieldSpec{
	{Name: "amount", Tag: RequiredUserInput},
	// debit_account_id/credit_account_id presence depends on the entry type
	// and is checked by the engine's shape validation, never auto-filled.
	{Name: "debit_account_id", Tag: APIHandled},
	{Name: "credit_account_id", Tag: APIHandled},
	{Name: "tax_id", Tag: APIHandled},
	{Name: "description", Tag: APIHandled},
}

var createRules = map[ResourceKind]*RuleSet{
	Contact: {
		Kind: Contact,
		Fields: []FieldSpec{
			{Name: "name_1", Tag: RequiredUserInput},
			{Name: "contact_type_id", Tag: AutoFillDefault, Default: 2},
			{Name: "user_id", Tag: AutoFillDefault, Default: 1},
			{Name: "owner_id", Tag: AutoFillDefault, Default: 1},
			{Name: "nr", Tag: APIHandled},
		},
	},
	Invoice: {
		Kind: Invoice,
		Fields: []FieldSpec{
			{Name: "contact_id", Tag: RequiredUserInput},
			{Name: "user_id", Tag: AutoFillDefault, Default: 1},
			{Name: "nr", Tag: APIHandled},
			{Name: "title", Tag: APIHandled},
		},
		Lines: &LineRule{Field: "positions", Required: true, Fields: positionFields},
	},
	Quote: {
		Kind: Quote,
		Fields: []FieldSpec{
			{Name: "contact_id", Tag: RequiredUserInput},
			{Name: "user_id", Tag: AutoFillDefault, Default: 1},
			{Name: "nr", Tag: APIHandled},
			{Name: "title", Tag: APIHandled},
		},
		Lines: &LineRule{Field: "positions", Required: false, Fields: positionFields},
	},
	Project: {
		Kind: Project,
		Fields: []FieldSpec{
			{Name: "name", Tag: RequiredUserInput},
			{Name: "contact_id", Tag: RequiredUserInput},
			{Name: "user_id", Tag: AutoFillDefault, Default: 1},
			{Name: "pr_state_id", Tag: AutoFillDefault, Default: 1},
			{Name: "pr_project_type_id", Tag: AutoFillDefault, Default: 1},
			{Name: "nr", Tag: APIHandled},
		},
	},
	Item: {
		Kind: Item,
		Fields: []FieldSpec{
			{Name: "intern_name", Tag: RequiredUserInput},
			{Name: "user_id", Tag: AutoFillDefault, Default: 1},
			{Name: "article_type_id", Tag: AutoFillDefault, Default: 1},
			{Name: "currency_id", Tag: AutoFillDefault, Default: 1},
			{Name: "is_stock", Tag: AutoFillDefault, Default: false},
			{Name: "delivery_price", Tag: AutoFillDefault, Default: 0},
			{Name: "nr", Tag: APIHandled},
		},
	},
	ManualEntry: {
		Kind: ManualEntry,
		Fields: []FieldSpec{
			{Name: "date", Tag: RequiredUserInput},
			{Name: "type", Tag: AutoFillDefault, Default: ManualSingleEntry},
			{Name: "reference_nr", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupNextReference}},
		},
		Lines: &LineRule{Field: "entries", Required: true, Fields: entryLineFields},
	},
	Position: {
		Kind:   Position,
		Fields: positionFields,
	},
}

// updateRules hold the classification used when modifying an existing
// record: fields the API requires on PUT are looked up from the current
// record so an update never strips required data.
var updateRules = map[ResourceKind]*RuleSet{
	Contact: {
		Kind: Contact,
		Fields: []FieldSpec{
			{Name: "name_1", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupExistingRecord, Field: "name_1"}},
			{Name: "contact_type_id", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupExistingRecord, Field: "contact_type_id"}},
			{Name: "user_id", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupExistingRecord, Field: "user_id"}},
			{Name: "owner_id", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupExistingRecord, Field: "owner_id"}},
			{Name: "nr", Tag: AutoFillLookup, Lookup: LookupKey{Kind: LookupExistingRecord, Field: "nr"}},
		},
	},
}

// Rules returns the creation rule set for a resource kind.
func Rules(kind ResourceKind) (*RuleSet, error) {
	rs, ok := createRules[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return rs, nil
}

// UpdateRules returns the update rule set for a resource kind. Kinds without
// a dedicated update rule set fall back to their creation rules.
func UpdateRules(kind ResourceKind) (*RuleSet, error) {
	if rs, ok := updateRules[kind]; ok {
		return rs, nil
	}
	return Rules(kind)
}

// Classify returns the classification tag for one declared field.
// Fields absent from the table report ErrUnknownField; callers treat those
// as pass-through so forward-compatible API fields are never blocked.
func Classify(kind ResourceKind, field string) (Classification, error) {
	rs, err := Rules(kind)
	if err != nil {
		return 0, err
	}
	for _, f := range rs.Fields {
		if f.Name == field {
			return f.Tag, nil
		}
	}
	return 0, ErrUnknownField
}
