package fieldspec

import "errors"

var (
	// ErrUnknownKind indicates no rule set is declared for the resource kind
	ErrUnknownKind = errors.New("unknown resource kind")

	// ErrUnknownField indicates the field has no entry in the classification table
	ErrUnknownField = errors.New("field not declared for resource kind")
)
