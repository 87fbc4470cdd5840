package bedrockcfg

import "encoding/json"

// remarshal round-trips v through JSON into dst, used to decode a loosely
// typed map[string]interface{} response body into a stricter local
// struct without hand-writing field-by-field extraction.
func remarshal(v interface{}, dst interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// marshalArguments renders a tool call's parsed input map back to the
// compact JSON string the canonical ToolCall.Function.Arguments field
// expects.
func marshalArguments(input interface{}) (string, error) {
	if input == nil {
		return "{}", nil
	}
	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
