package transform

import (
	"errors"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestApply_RequiredFieldMissing(t *testing.T) {
	cfg := FunctionConfig{Rules: []FieldRule{
		Single{CanonicalField: "model", ParamPath: "modelId", Required: true},
	}}
	_, err := Apply(cfg, map[string]interface{}{})
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	var fe *FieldError
	if !errors.As(err, &fe) || !errors.Is(fe, ErrMissingRequiredField) {
		t.Fatalf("expected FieldError wrapping ErrMissingRequiredField, got %v", err)
	}
}

func TestApply_DefaultApplied(t *testing.T) {
	cfg := FunctionConfig{Rules: []FieldRule{
		Single{
			CanonicalField: "temperature",
			ParamPath:      "inferenceConfig.temperature",
			Default: func(body interface{}, target Tree) (interface{}, bool) {
				return 1.0, true
			},
		},
	}}
	out, err := Apply(cfg, map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inf := out["inferenceConfig"].(map[string]interface{})
	if inf["temperature"] != 1.0 {
		t.Fatalf("expected default temperature 1.0, got %v", inf["temperature"])
	}
}

func TestApply_MinMaxEnforced(t *testing.T) {
	cfg := FunctionConfig{Rules: []FieldRule{
		Single{CanonicalField: "top_p", ParamPath: "inferenceConfig.topP", Min: floatPtr(0), Max: floatPtr(1)},
	}}
	_, err := Apply(cfg, map[string]interface{}{"top_p": 1.5})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestApply_TransformReplacesValue(t *testing.T) {
	cfg := FunctionConfig{Rules: []FieldRule{
		Single{
			CanonicalField: "stop",
			ParamPath:      "inferenceConfig.stopSequences",
			Transform: func(body interface{}) (interface{}, error) {
				v, _ := Get(body, "stop")
				s, _ := v.(string)
				return []interface{}{s}, nil
			},
		},
	}}
	out, err := Apply(cfg, map[string]interface{}{"stop": "END"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inf := out["inferenceConfig"].(map[string]interface{})
	seq := inf["stopSequences"].([]interface{})
	if len(seq) != 1 || seq[0] != "END" {
		t.Fatalf("unexpected stopSequences: %v", seq)
	}
}

func TestApply_MultiFanout(t *testing.T) {
	cfg := FunctionConfig{Rules: []FieldRule{
		Multi{CanonicalField: "messages", Entries: []Single{
			{CanonicalField: "system_text", ParamPath: "system", Default: func(body interface{}, target Tree) (interface{}, bool) {
				return []interface{}{map[string]interface{}{"text": "sys"}}, true
			}},
			{CanonicalField: "messages", ParamPath: "messages", Required: true},
		}},
	}}
	out, err := Apply(cfg, map[string]interface{}{"messages": []interface{}{"m1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out["system"]; !ok {
		t.Fatal("expected system key placed by fanout")
	}
	if _, ok := out["messages"]; !ok {
		t.Fatal("expected messages key placed by fanout")
	}
}

func TestTreeSet_ConflictingValues(t *testing.T) {
	tr := Tree{}
	if err := tr.Set("a.b", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Set("a.b", 2); err == nil {
		t.Fatal("expected error placing conflicting value at same path")
	}
}

func TestTreeSet_SameValueTwiceIsNotConflict(t *testing.T) {
	tr := Tree{}
	if err := tr.Set("a.b", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Set("a.b", 1); err != nil {
		t.Fatalf("expected idempotent set to succeed, got %v", err)
	}
}

func TestTreeSet_ListIndexing(t *testing.T) {
	tr := Tree{}
	if err := tr.Set("items.0.name", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Set("items.1.name", "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := tr["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}
