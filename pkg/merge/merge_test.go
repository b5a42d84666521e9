package merge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"externalconfig/pkg/core"
	"externalconfig/pkg/tree"
)

func object(pairs ...any) *tree.Object {
	result := tree.NewObject()
	for index := 0; index < len(pairs); index += 2 {
		result.Set(pairs[index].(string), pairs[index+1])
	}
	return result
}

func TestMergeSourceWinsAndOrderIsKept(t *testing.T) {
	target := object("a", "1", "nested", object("x", "1", "y", "2"), "b", "2")
	source := object("c", "3", "nested", object("y", "changed", "z", "3"), "a", "override")

	merged := Merge(target, source).(*tree.Object)

	assert.Equal(t, []string{"a", "nested", "b", "c"}, merged.Keys())
	a, _ := merged.Get("a")
	assert.Equal(t, "override", a)
	nested, _ := merged.Get("nested")
	assert.Equal(t, []string{"x", "y", "z"}, nested.(*tree.Object).Keys())
	y, _ := nested.(*tree.Object).Get("y")
	assert.Equal(t, "changed", y)
}

func TestMergeReplacesNonObjects(t *testing.T) {
	cases := []struct {
		name   string
		target tree.Value
		source tree.Value
	}{
		{name: "arrays are not concatenated", target: []any{"INFO", "ERROR"}, source: []any{"DEBUG"}},
		{name: "scalar over object", target: object("a", "1"), source: "flat"},
		{name: "object over scalar", target: "flat", source: object("a", "1")},
		{name: "null wins", target: "value", source: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tree.Equal(tc.source, Merge(tc.target, tc.source)))
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	target := object("db", object("host", "a"))
	source := object("db", object("host", "b"))

	Merge(target, source)

	db, _ := target.Get("db")
	host, _ := db.(*tree.Object).Get("host")
	assert.Equal(t, "a", host)
}

func TestMergeAllThreeStoreScenario(t *testing.T) {
	first := object("dbConfig", object(
		"host", "localhost",
		"logLevels", []any{"INFO", "ERROR", "DEBUG"},
		"timeout", json.Number("1000"),
	))
	second := object("dbConfig", object(
		"host", "dev",
		"logLevels", []any{"INFO", "DEBUG"},
		"logApiKey", "logger_key",
	))
	third := object("dbConfig", object(
		"host", "prod",
		"logLevels", []any{"INFO"},
	))

	merged, err := MergeAll(first, second, third)
	require.NoError(t, err)

	dbConfig, _ := merged.(*tree.Object).Get("dbConfig")
	db := dbConfig.(*tree.Object)
	host, _ := db.Get("host")
	levels, _ := db.Get("logLevels")
	timeout, _ := db.Get("timeout")
	apiKey, _ := db.Get("logApiKey")

	assert.Equal(t, "prod", host)
	assert.Equal(t, []any{"INFO"}, levels)
	assert.Equal(t, json.Number("1000"), timeout)
	assert.Equal(t, "logger_key", apiKey)
}

func TestMergeAllIsLeftFold(t *testing.T) {
	a := object("k", "a", "onlyA", "1")
	b := object("k", "b", "onlyB", "2")
	c := object("k", "c", "onlyC", "3")

	folded, err := MergeAll(a, b, c)
	require.NoError(t, err)
	assert.True(t, tree.Equal(Merge(Merge(a, b), c), folded))

	reordered, err := MergeAll(c, b, a)
	require.NoError(t, err)
	for _, key := range []string{"onlyA", "onlyB", "onlyC"} {
		_, exists := reordered.(*tree.Object).Get(key)
		assert.True(t, exists, "non-conflicting key %s dropped", key)
	}
	winner, _ := reordered.(*tree.Object).Get("k")
	assert.Equal(t, "a", winner)
}

func TestMergeAllRejectsNonObjects(t *testing.T) {
	_, err := MergeAll(object("a", "1"), []any{"x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIncompatibleFileTypes))

	empty, err := MergeAll()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.(*tree.Object).Len())
}
