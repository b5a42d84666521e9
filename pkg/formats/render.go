package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "go.yaml.in/yaml/v3"

	"externalconfig/pkg/core"
	"externalconfig/pkg/tree"
)

// Format renders value in the requested format.
func Format(value tree.Value, fileType FileType) (string, error) {
	var (
		rendered string
		err      error
	)

	switch fileType {
	case JSON, JSON5:
		rendered, err = renderJSON(value)
	case YAML:
		rendered, err = renderYAML(value)
	case TOML:
		rendered, err = renderTOML(value)
	case Properties:
		rendered, err = renderPairs(value, propertiesFlatten, escapeProperty)
	case Env:
		rendered, err = renderPairs(value, envFlatten, quoteEnv)
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, fileType)
	}

	if err != nil {
		return "", &core.SerializationError{Format: string(fileType), Err: err}
	}
	return rendered, nil
}

// FormatFile renders value in the format declared by filename's extension.
func FormatFile(value tree.Value, filename string) (string, error) {
	fileType, ok := FromFilename(filename)
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, filename)
	}
	return Format(value, fileType)
}

func renderJSON(value tree.Value) (string, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

func renderYAML(value tree.Value) (string, error) {
	node, err := toYAMLNode(value)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	encoder.CompactSeqIndent()
	if err := encoder.Encode(node); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

func toYAMLNode(value tree.Value) (*yaml.Node, error) {
	switch typed := value.(type) {
	case *tree.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range typed.Keys() {
			child, _ := typed.Get(key)
			childNode, err := toYAMLNode(child)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, childNode)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typed {
			childNode, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, childNode)
		}
		return node, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: typed}, nil
	case json.Number:
		tag := "!!float"
		if _, err := typed.Int64(); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: typed.String()}, nil
	case bool:
		literal, _ := tree.Scalar(typed)
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: literal}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", value)
	}
}

func renderTOML(value tree.Value) (string, error) {
	if !tree.IsObject(value) {
		return "", errors.New("toml documents must be tables")
	}
	native, err := toNative(value, true)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	encoder := toml.NewEncoder(&buffer)
	encoder.Indent = ""
	if err := encoder.Encode(native); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

// toNative converts a tree into plain Go values the TOML encoder understands.
// Nulls inside tables are dropped since TOML has no null.
func toNative(value tree.Value, inTable bool) (any, error) {
	switch typed := value.(type) {
	case *tree.Object:
		keys := make([]string, 0, typed.Len())
		values := make([]any, 0, typed.Len())
		for _, key := range typed.Keys() {
			child, _ := typed.Get(key)
			if child == nil {
				continue
			}
			converted, err := toNative(child, true)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			values = append(values, converted)
		}
		return orderedTable(keys, values), nil
	case []any:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				return nil, errors.New("toml arrays cannot hold null")
			}
			converted, err := toNative(item, false)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return items, nil
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer, nil
		}
		return typed.Float64()
	case string, bool:
		return typed, nil
	case nil:
		if inTable {
			return nil, nil
		}
		return nil, errors.New("toml cannot represent null")
	default:
		return nil, fmt.Errorf("unsupported value of type %T", value)
	}
}

// orderedTable builds a struct with one tagged field per key, since the
// encoder writes struct fields in declaration order but sorts map keys. Keys
// a toml tag cannot carry fall back to a map.
func orderedTable(keys []string, values []any) any {
	fields := make([]reflect.StructField, len(keys))
	for index, key := range keys {
		if key == "" || key == "-" || strings.Contains(key, ",") {
			table := make(map[string]any, len(keys))
			for position, name := range keys {
				table[name] = values[position]
			}
			return table
		}
		fields[index] = reflect.StructField{
			Name: "F" + strconv.Itoa(index),
			Type: reflect.TypeOf(values[index]),
			Tag:  reflect.StructTag("toml:" + strconv.Quote(key)),
		}
	}

	table := reflect.New(reflect.StructOf(fields)).Elem()
	for index, value := range values {
		table.Field(index).Set(reflect.ValueOf(value))
	}
	return table.Interface()
}

func renderPairs(value tree.Value, options FlattenOptions, escape func(key, value string) string) (string, error) {
	pairs, err := Flatten(value, options)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, escape(pair.Key, pair.Value))
	}
	return strings.Join(lines, "\n"), nil
}

var (
	propertyKeyEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, "=", `\=`, ":", `\:`, " ", `\ `, "#", `\#`, "!", `\!`)
	propertyValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	envValueEscaper      = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
)

func escapeProperty(key, value string) string {
	escapedValue := propertyValueEscaper.Replace(value)
	if strings.HasPrefix(escapedValue, " ") {
		escapedValue = `\` + escapedValue
	}
	return propertyKeyEscaper.Replace(key) + "=" + escapedValue
}

func quoteEnv(key, value string) string {
	switch {
	case !strings.ContainsAny(value, "\n\"'#$\\ \t"):
		return key + "=" + value
	case !strings.ContainsAny(value, "'\n"):
		return key + "='" + value + "'"
	default:
		return key + `="` + envValueEscaper.Replace(value) + `"`
	}
}
