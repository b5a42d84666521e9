// Package merge deep-merges canonical configuration trees.
package merge

import (
	"fmt"

	"externalconfig/pkg/core"
	"externalconfig/pkg/tree"
)

// Merge combines source into target and returns the result. Objects merge
// key by key with source winning; any other pair is replaced by source.
// Neither input is modified.
func Merge(target, source tree.Value) tree.Value {
	targetObject, targetIsObject := target.(*tree.Object)
	sourceObject, sourceIsObject := source.(*tree.Object)
	if !targetIsObject || !sourceIsObject || targetObject == nil || sourceObject == nil {
		return tree.Clone(source)
	}

	merged := tree.NewObject()
	for _, key := range targetObject.Keys() {
		targetValue, _ := targetObject.Get(key)
		if sourceValue, exists := sourceObject.Get(key); exists {
			merged.Set(key, Merge(targetValue, sourceValue))
			continue
		}
		merged.Set(key, tree.Clone(targetValue))
	}
	for _, key := range sourceObject.Keys() {
		if _, exists := targetObject.Get(key); exists {
			continue
		}
		sourceValue, _ := sourceObject.Get(key)
		merged.Set(key, tree.Clone(sourceValue))
	}
	return merged
}

// MergeAll folds documents left to right so later documents win on conflicts.
// Every document must be an object.
func MergeAll(documents ...tree.Value) (tree.Value, error) {
	if len(documents) == 0 {
		return tree.NewObject(), nil
	}

	var accumulated tree.Value
	for index, document := range documents {
		if !tree.IsObject(document) {
			return nil, fmt.Errorf("document %d is %T: %w", index, document, core.ErrIncompatibleFileTypes)
		}
		if index == 0 {
			accumulated = tree.Clone(document)
			continue
		}
		accumulated = Merge(accumulated, document)
	}
	return accumulated, nil
}
