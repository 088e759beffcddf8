// Package completion fills in Bexio payloads before dispatch. Caller values
// always win; absent fields are filled from defaults or remote lookups per
// the fieldspec tables; required fields that remain absent, and malformed
// line items, surface as one aggregated ValidationFailure.
package completion

import (
	"context"
	"errors"
	"fmt"

	"bexmcp/internal/fieldspec"
)

// Engine completes payloads against the classification tables.
type Engine struct {
	lookups LookupProvider
}

// NewEngine creates a completion engine backed by the given lookup provider.
func NewEngine(lookups LookupProvider) *Engine {
	return &Engine{lookups: lookups}
}

// Complete fills a creation payload for one resource kind. The input map is
// not mutated. Unknown fields pass through untouched. Completion is
// idempotent: re-completing an output changes nothing.
func (e *Engine) Complete(ctx context.Context, kind fieldspec.ResourceKind, fields map[string]any) (map[string]any, error) {
	rules, err := fieldspec.Rules(kind)
	if err != nil {
		return nil, err
	}
	return e.complete(ctx, rules, fields, &Scope{})
}

// CompleteUpdate fills an update payload for an existing record. Fields the
// API requires on update are looked up from the current record when the
// caller omits them, so a partial update never strips existing data.
func (e *Engine) CompleteUpdate(ctx context.Context, kind fieldspec.ResourceKind, recordID int, fields map[string]any) (map[string]any, error) {
	rules, err := fieldspec.UpdateRules(kind)
	if err != nil {
		return nil, err
	}
	return e.complete(ctx, rules, fields, &Scope{RecordID: recordID})
}

func (e *Engine) complete(ctx context.Context, rules *fieldspec.RuleSet, fields map[string]any, scope *Scope) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	failure := &ValidationFailure{}
	if err := e.completeFields(ctx, rules.Fields, out, scope, "", failure); err != nil {
		return nil, err
	}

	if rules.Lines != nil {
		if err := e.completeLines(ctx, rules, out, scope, failure); err != nil {
			return nil, err
		}
	}

	if rules.Kind == fieldspec.ManualEntry {
		validateEntryShape(out, failure)
	}

	if len(failure.Fields) > 0 {
		return nil, failure
	}
	return out, nil
}

// completeFields applies one spec list to one map. A non-nil caller value is
// never overwritten; JSON null counts as absent. Lookup transport errors
// abort completion; a lookup that merely finds nothing is recorded on the
// failure so every problem is reported at once.
func (e *Engine) completeFields(ctx context.Context, specs []fieldspec.FieldSpec, out map[string]any, scope *Scope, prefix string, failure *ValidationFailure) error {
	for _, spec := range specs {
		if v, ok := out[spec.Name]; ok && v != nil {
			continue
		}
		name := prefix + spec.Name

		switch spec.Tag {
		case fieldspec.RequiredUserInput:
			failure.add(name, MissingRequiredField, guidanceFor(name, MissingRequiredField))

		case fieldspec.AutoFillDefault:
			out[spec.Name] = spec.Default

		case fieldspec.AutoFillLookup:
			val, err := e.lookups.Lookup(ctx, spec.Lookup, scope)
			switch {
			case errors.Is(err, ErrLookupNotFound):
				failure.add(name, LookupNotFound, guidanceFor(name, LookupNotFound))
			case err != nil:
				return fmt.Errorf("resolving %s: %w", name, err)
			default:
				out[spec.Name] = val
			}

		case fieldspec.APIHandled:
			// the remote API fills these
		}
	}
	return nil
}

func (e *Engine) completeLines(ctx context.Context, rules *fieldspec.RuleSet, out map[string]any, scope *Scope, failure *ValidationFailure) error {
	lr := rules.Lines
	raw, present := out[lr.Field]

	lines, ok := raw.([]any)
	if present && raw != nil && !ok {
		failure.add(lr.Field, InvalidFieldValue, guidanceFor(lr.Field, InvalidFieldValue))
		return nil
	}
	if len(lines) == 0 {
		if lr.Required {
			failure.add(lr.Field, MissingRequiredField, guidanceFor(lr.Field, MissingRequiredField))
		}
		return nil
	}

	completed := make([]any, len(lines))
	for i, el := range lines {
		line, ok := el.(map[string]any)
		if !ok {
			name := fmt.Sprintf("%s[%d]", lr.Field, i)
			failure.add(name, InvalidFieldValue, "Each line must be a JSON object.")
			completed[i] = el
			continue
		}
		lineOut := make(map[string]any, len(line))
		for k, v := range line {
			lineOut[k] = v
		}
		prefix := fmt.Sprintf("%s[%d].", lr.Field, i)
		if err := e.completeFields(ctx, lr.Fields, lineOut, scope, prefix, failure); err != nil {
			return err
		}
		completed[i] = lineOut
	}
	out[lr.Field] = completed
	return nil
}

// validateEntryShape enforces which account sides a manual-entry line must
// carry. Single and group entries book both sides per line; a compound
// entry's lines each book exactly one side against the shared counterpart.
func validateEntryShape(out map[string]any, failure *ValidationFailure) {
	entryType, _ := out["type"].(string)
	lines, _ := out["entries"].([]any)

	for i, el := range lines {
		line, ok := el.(map[string]any)
		if !ok {
			continue
		}
		name := fmt.Sprintf("entries[%d]", i)
		hasDebit := line["debit_account_id"] != nil
		hasCredit := line["credit_account_id"] != nil

		switch entryType {
		case fieldspec.ManualSingleEntry, fieldspec.ManualGroupEntry:
			if !hasDebit {
				failure.add(name+".debit_account_id", MissingRequiredField, guidanceFor("debit_account_id", MissingRequiredField))
			}
			if !hasCredit {
				failure.add(name+".credit_account_id", MissingRequiredField, guidanceFor("credit_account_id", MissingRequiredField))
			}
		case fieldspec.ManualCompoundEntry:
			switch {
			case hasDebit && hasCredit:
				failure.add(name, InvalidFieldValue,
					"A compound entry line books exactly one side; set debit_account_id or credit_account_id, not both.")
			case !hasDebit && !hasCredit:
				failure.add(name, MissingRequiredField,
					"A compound entry line must set either debit_account_id or credit_account_id.")
			}
		default:
			failure.add("type", InvalidFieldValue,
				fmt.Sprintf("Unknown entry type %q. Valid types: %s, %s, %s.",
					entryType, fieldspec.ManualSingleEntry, fieldspec.ManualCompoundEntry, fieldspec.ManualGroupEntry))
			return
		}
	}
}
