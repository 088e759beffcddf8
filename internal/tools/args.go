package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
)

// intArg reads a required integer argument. JSON decoding yields float64 for
// numbers, so every numeric representation is accepted.
func intArg(args map[string]any, name string) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required argument: %s", name)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %s must be an integer", name)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %s must be an integer", name)
		}
		return i, nil
	}
	return 0, fmt.Errorf("argument %s must be an integer", name)
}

func optionalIntArg(args map[string]any, name string) int {
	if _, ok := args[name]; !ok {
		return 0
	}
	i, err := intArg(args, name)
	if err != nil {
		return 0
	}
	return i
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func listParamsArg(args map[string]any) bexio.ListParams {
	return bexio.ListParams{
		Limit:   optionalIntArg(args, "limit"),
		Offset:  optionalIntArg(args, "offset"),
		OrderBy: stringArg(args, "order_by"),
	}
}

func criteriaArg(args map[string]any) ([]bexio.Criterion, error) {
	raw, ok := args["criteria"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errors.New("missing required argument: criteria")
	}
	criteria := make([]bexio.Criterion, 0, len(raw))
	for i, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("criteria[%d] must be an object with field, value and criteria", i)
		}
		criteria = append(criteria, bexio.Criterion{
			Field:    stringArg(m, "field"),
			Value:    m["value"],
			Criteria: stringArg(m, "criteria"),
		})
	}
	return criteria, nil
}

// payloadArg copies the arguments minus the named control keys, leaving the
// record payload.
func payloadArg(args map[string]any, controlKeys ...string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, k := range controlKeys {
		delete(out, k)
	}
	return out
}

func rawResult(raw json.RawMessage) ToolResult {
	return ToolResult{Success: true, Output: string(raw)}
}

// errorResult translates a failure into caller guidance. Validation problems
// render one actionable line per field; remote failures carry their guidance.
func errorResult(err error) ToolResult {
	err = completion.Translate(err)

	var failure *completion.ValidationFailure
	if errors.As(err, &failure) {
		return ToolResult{Success: false, Error: failure.Guidance()}
	}

	var remote *completion.RemoteError
	if errors.As(err, &remote) {
		return ToolResult{Success: false, Error: remote.Error() + "\n" + remote.Guidance}
	}

	return ToolResult{Success: false, Error: err.Error()}
}
