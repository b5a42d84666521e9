package formats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/huandu/xstrings"

	"externalconfig/pkg/tree"
)

// maxFlatIndex bounds array indices read back from flat keys.
const maxFlatIndex = 1 << 16

// KeyValue is one flattened entry.
type KeyValue struct {
	Key   string
	Value string
}

// FlattenOptions controls how nested keys become flat keys.
type FlattenOptions struct {
	Separator        string
	EscapedSeparator string
	KeyTransform     func(string) string
}

// UnflattenOptions controls how flat keys are split back into paths.
type UnflattenOptions struct {
	Separator        string
	EscapedSeparator string
	KeyTransform     func(string) string
}

var (
	propertiesFlatten   = FlattenOptions{Separator: ".", EscapedSeparator: "."}
	propertiesUnflatten = UnflattenOptions{Separator: ".", EscapedSeparator: "."}

	envFlatten = FlattenOptions{
		Separator:        "_",
		EscapedSeparator: "__",
		KeyTransform:     upperSnake,
	}
	envUnflatten = UnflattenOptions{
		Separator:        "_",
		EscapedSeparator: "__",
		KeyTransform:     xstrings.ToCamelCase,
	}
)

func upperSnake(key string) string {
	return strings.ToUpper(xstrings.ToSnakeCase(key))
}

// Flatten walks value depth first and returns its leaves keyed by path,
// sorted lexicographically by key.
func Flatten(value tree.Value, options FlattenOptions) ([]KeyValue, error) {
	if _, ok := value.(*tree.Object); !ok {
		return nil, fmt.Errorf("flatten requires an object, got %T", value)
	}

	collected := map[string]string{}
	if err := flattenInto(collected, "", value, options); err != nil {
		return nil, err
	}

	pairs := make([]KeyValue, 0, len(collected))
	for key, leaf := range collected {
		pairs = append(pairs, KeyValue{Key: key, Value: leaf})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func flattenInto(collected map[string]string, prefix string, value tree.Value, options FlattenOptions) error {
	switch typed := value.(type) {
	case *tree.Object:
		for _, key := range typed.Keys() {
			segment := key
			if options.KeyTransform != nil {
				segment = options.KeyTransform(segment)
			}
			if options.Separator != options.EscapedSeparator {
				segment = strings.ReplaceAll(segment, options.Separator, options.EscapedSeparator)
			}
			child, _ := typed.Get(key)
			if err := flattenInto(collected, joinPath(prefix, segment, options.Separator), child, options); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for index, item := range typed {
			if err := flattenInto(collected, joinPath(prefix, strconv.Itoa(index), options.Separator), item, options); err != nil {
				return err
			}
		}
		return nil
	default:
		leaf, err := tree.Scalar(value)
		if err != nil {
			return err
		}
		collected[prefix] = leaf
		return nil
	}
}

func joinPath(prefix, segment, separator string) string {
	if prefix == "" {
		return segment
	}
	return prefix + separator + segment
}

// Unflatten rebuilds a tree from flat pairs. Numeric segments become array
// indices; a key that is both a leaf and a parent is an error.
func Unflatten(pairs []KeyValue, options UnflattenOptions) (tree.Value, error) {
	root := tree.NewObject()
	for _, pair := range pairs {
		segments := splitKey(pair.Key, options)
		if len(segments) == 0 {
			return nil, fmt.Errorf("empty key")
		}
		if options.KeyTransform != nil {
			for index, segment := range segments {
				if !isIndex(segment) {
					segments[index] = options.KeyTransform(segment)
				}
			}
		}
		if _, err := insertPath(root, segments, pair.Value); err != nil {
			return nil, fmt.Errorf("key %q: %w", pair.Key, err)
		}
	}
	return root, nil
}

func splitKey(key string, options UnflattenOptions) []string {
	if key == "" {
		return nil
	}
	if options.EscapedSeparator == "" || options.EscapedSeparator == options.Separator {
		return strings.Split(key, options.Separator)
	}

	var segments []string
	var current strings.Builder
	for index := 0; index < len(key); {
		switch {
		case strings.HasPrefix(key[index:], options.EscapedSeparator):
			current.WriteString(options.Separator)
			index += len(options.EscapedSeparator)
		case strings.HasPrefix(key[index:], options.Separator):
			segments = append(segments, current.String())
			current.Reset()
			index += len(options.Separator)
		default:
			current.WriteByte(key[index])
			index++
		}
	}
	return append(segments, current.String())
}

func isIndex(segment string) bool {
	if segment == "" || (len(segment) > 1 && segment[0] == '0') {
		return false
	}
	for _, character := range segment {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

func insertPath(container tree.Value, segments []string, leaf string) (tree.Value, error) {
	if len(segments) == 0 {
		if container != nil {
			return nil, fmt.Errorf("value conflicts with nested keys")
		}
		return leaf, nil
	}

	segment, rest := segments[0], segments[1:]

	if container == nil {
		if isIndex(segment) {
			container = []any{}
		} else {
			container = tree.NewObject()
		}
	}

	switch typed := container.(type) {
	case *tree.Object:
		child, _ := typed.Get(segment)
		updated, err := insertPath(child, rest, leaf)
		if err != nil {
			return nil, err
		}
		typed.Set(segment, updated)
		return typed, nil
	case []any:
		if !isIndex(segment) {
			return nil, fmt.Errorf("segment %q used on an array", segment)
		}
		position, err := strconv.Atoi(segment)
		if err != nil || position > maxFlatIndex {
			return nil, fmt.Errorf("array index %q out of range", segment)
		}
		for len(typed) <= position {
			typed = append(typed, nil)
		}
		updated, err := insertPath(typed[position], rest, leaf)
		if err != nil {
			return nil, err
		}
		typed[position] = updated
		return typed, nil
	default:
		return nil, fmt.Errorf("segment %q nested under a value", segment)
	}
}
