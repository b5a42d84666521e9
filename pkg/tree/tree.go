// Package tree holds the canonical configuration value every format parses
// into and renders from.
//
// A Value is one of *Object, []any, string, json.Number, bool or nil.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a node of the canonical configuration tree.
type Value = any

// Object is an insertion-ordered string keyed map.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: map[string]Value{}}
}

// Set stores value under key. Existing keys keep their position.
func (object *Object) Set(key string, value Value) {
	if object.values == nil {
		object.values = map[string]Value{}
	}
	if _, exists := object.values[key]; !exists {
		object.keys = append(object.keys, key)
	}
	object.values[key] = value
}

// Get returns the value stored under key.
func (object *Object) Get(key string) (Value, bool) {
	if object == nil {
		return nil, false
	}
	value, ok := object.values[key]
	return value, ok
}

// Keys returns the keys in insertion order.
func (object *Object) Keys() []string {
	if object == nil {
		return nil
	}
	return append([]string(nil), object.keys...)
}

// Len reports the number of entries.
func (object *Object) Len() int {
	if object == nil {
		return 0
	}
	return len(object.keys)
}

// MarshalJSON renders the object with its keys in insertion order.
func (object *Object) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, key := range object.Keys() {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := encodeUnescaped(&buffer, key); err != nil {
			return nil, err
		}
		buffer.WriteByte(':')
		if err := encodeUnescaped(&buffer, object.values[key]); err != nil {
			return nil, err
		}
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func encodeUnescaped(buffer *bytes.Buffer, value Value) error {
	var encoded bytes.Buffer
	encoder := json.NewEncoder(&encoded)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	buffer.Write(bytes.TrimSuffix(encoded.Bytes(), []byte("\n")))
	return nil
}

// IsObject reports whether value is a non-nil *Object.
func IsObject(value Value) bool {
	object, ok := value.(*Object)
	return ok && object != nil
}

// Clone returns a deep copy of value.
func Clone(value Value) Value {
	switch typed := value.(type) {
	case *Object:
		if typed == nil {
			return nil
		}
		copied := NewObject()
		for _, key := range typed.keys {
			copied.Set(key, Clone(typed.values[key]))
		}
		return copied
	case []any:
		copied := make([]any, len(typed))
		for index, item := range typed {
			copied[index] = Clone(item)
		}
		return copied
	default:
		return typed
	}
}

// Equal compares two values structurally. Object key order is not significant.
func Equal(left, right Value) bool {
	switch typedLeft := left.(type) {
	case *Object:
		typedRight, ok := right.(*Object)
		if !ok || typedLeft.Len() != typedRight.Len() {
			return false
		}
		for _, key := range typedLeft.Keys() {
			rightValue, exists := typedRight.Get(key)
			if !exists {
				return false
			}
			leftValue, _ := typedLeft.Get(key)
			if !Equal(leftValue, rightValue) {
				return false
			}
		}
		return true
	case []any:
		typedRight, ok := right.([]any)
		if !ok || len(typedLeft) != len(typedRight) {
			return false
		}
		for index := range typedLeft {
			if !Equal(typedLeft[index], typedRight[index]) {
				return false
			}
		}
		return true
	case json.Number:
		typedRight, ok := right.(json.Number)
		if !ok {
			return false
		}
		return numbersEqual(typedLeft, typedRight)
	default:
		return left == right
	}
}

func numbersEqual(left, right json.Number) bool {
	if left == right {
		return true
	}
	if leftInt, err := left.Int64(); err == nil {
		if rightInt, err := right.Int64(); err == nil {
			return leftInt == rightInt
		}
	}
	leftFloat, leftErr := left.Float64()
	rightFloat, rightErr := right.Float64()
	return leftErr == nil && rightErr == nil && leftFloat == rightFloat
}

// Scalar renders a leaf value the way flat key/value formats expect it.
func Scalar(value Value) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "null", nil
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("value of type %T is not a scalar", value)
	}
}
