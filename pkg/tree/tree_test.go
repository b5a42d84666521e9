package tree

import (
	"encoding/json"
	"testing"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	object := NewObject()
	object.Set("zeta", "1")
	object.Set("alpha", "2")
	object.Set("zeta", "3")

	keys := object.Keys()
	if len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Fatalf("unexpected key order %v", keys)
	}
	if value, _ := object.Get("zeta"); value != "3" {
		t.Fatalf("expected overwritten value, got %v", value)
	}

	encoded, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"zeta":"3","alpha":"2"}` {
		t.Fatalf("unexpected json %s", encoded)
	}
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewObject()
	inner.Set("host", "localhost")
	root := NewObject()
	root.Set("db", inner)
	root.Set("levels", []any{"INFO"})

	copied := Clone(root).(*Object)
	copiedInner, _ := copied.Get("db")
	copiedInner.(*Object).Set("host", "changed")
	levels, _ := copied.Get("levels")
	levels.([]any)[0] = "DEBUG"

	if host, _ := inner.Get("host"); host != "localhost" {
		t.Fatalf("clone shares nested object")
	}
	originalLevels, _ := root.Get("levels")
	if originalLevels.([]any)[0] != "INFO" {
		t.Fatalf("clone shares arrays")
	}
}

func TestEqual(t *testing.T) {
	left := NewObject()
	left.Set("a", json.Number("1000"))
	left.Set("b", []any{true, nil})
	right := NewObject()
	right.Set("b", []any{true, nil})
	right.Set("a", json.Number("1000.0"))

	cases := []struct {
		name  string
		left  Value
		right Value
		want  bool
	}{
		{name: "objects ignore order", left: left, right: right, want: true},
		{name: "string vs number", left: "1", right: json.Number("1"), want: false},
		{name: "arrays differ in length", left: []any{"a"}, right: []any{"a", "b"}, want: false},
		{name: "nil", left: nil, right: nil, want: true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Equal(testCase.left, testCase.right); got != testCase.want {
				t.Fatalf("Equal() = %v, want %v", got, testCase.want)
			}
		})
	}
}

func TestScalar(t *testing.T) {
	cases := map[string]Value{
		"text":  "text",
		"42":    json.Number("42"),
		"true":  true,
		"false": false,
		"null":  nil,
	}
	for want, value := range cases {
		got, err := Scalar(value)
		if err != nil || got != want {
			t.Fatalf("Scalar(%v) = %q, %v; want %q", value, got, err, want)
		}
	}
	if _, err := Scalar(NewObject()); err == nil {
		t.Fatalf("expected error for object")
	}
}
