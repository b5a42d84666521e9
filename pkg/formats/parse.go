package formats

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/subosito/gotenv"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"github.com/titanous/json5"
	yaml "go.yaml.in/yaml/v3"

	"externalconfig/pkg/core"
	"externalconfig/pkg/tree"
)

var (
	envAssignment = regexp.MustCompile(`^\s*(export\s+)?[A-Za-z_][A-Za-z0-9_]*=`)
	jsonNumber    = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

	errNotObject = errors.New("top-level value is not an object")
)

var parsers = map[FileType]func(string) (tree.Value, error){
	JSON:       parseJSON,
	JSON5:      parseJSON5,
	Env:        parseEnv,
	TOML:       parseTOML,
	YAML:       parseYAML,
	Properties: parseProperties,
}

// Parse tries every format of ParseOrder and returns the first object it
// produces together with the format that accepted it.
func Parse(text string) (tree.Value, FileType, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("%w: empty content", core.ErrParse)
	}

	for _, fileType := range ParseOrder {
		value, err := parsers[fileType](text)
		if err != nil {
			continue
		}
		if !tree.IsObject(value) {
			continue
		}
		return value, fileType, nil
	}

	return nil, "", core.ErrParse
}

// ParseAs parses text with a single format.
func ParseAs(text string, fileType FileType) (tree.Value, error) {
	parse, ok := parsers[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFileType, fileType)
	}
	value, err := parse(text)
	if err != nil {
		return nil, &core.SerializationError{Format: string(fileType), Err: err}
	}
	if !tree.IsObject(value) {
		return nil, &core.SerializationError{Format: string(fileType), Err: errNotObject}
	}
	return value, nil
}

func parseJSON(text string) (tree.Value, error) {
	if !gjson.Valid(text) {
		return nil, errors.New("invalid json")
	}
	return fromGJSON(gjson.Parse(text)), nil
}

func fromGJSON(result gjson.Result) tree.Value {
	switch result.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(result.Raw)
	case gjson.String:
		return result.Str
	}

	if result.IsObject() {
		object := tree.NewObject()
		result.ForEach(func(key, value gjson.Result) bool {
			object.Set(key.Str, fromGJSON(value))
			return true
		})
		return object
	}

	items := []any{}
	result.ForEach(func(_, value gjson.Result) bool {
		items = append(items, fromGJSON(value))
		return true
	})
	return items
}

// parseJSON5 reads documents that only add comments and trailing commas
// through hujson, keeping key order. Anything else JSON5 allows (unquoted
// keys, single quotes, hex numbers) goes through the full decoder, whose
// objects come back sorted by key.
func parseJSON5(text string) (tree.Value, error) {
	if standardized, err := hujson.Standardize([]byte(text)); err == nil {
		return parseJSON(string(standardized))
	}

	var discard any
	if err := json5.Unmarshal([]byte(text), &discard); err != nil {
		return nil, err
	}
	decoder := json5.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}
	return fromJSON5(decoded), nil
}

func fromJSON5(value any) tree.Value {
	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		object := tree.NewObject()
		for _, key := range keys {
			object.Set(key, fromJSON5(typed[key]))
		}
		return object
	case []any:
		items := make([]any, len(typed))
		for index, item := range typed {
			items[index] = fromJSON5(item)
		}
		return items
	case json5.Number:
		return json5Number(string(typed))
	case float64:
		return floatValue(typed)
	default:
		return typed
	}
}

// json5Number rewrites JSON5-only literals such as 0x1F, +1 or .5 into plain
// JSON numbers.
func json5Number(literal string) tree.Value {
	if jsonNumber.MatchString(literal) {
		return json.Number(literal)
	}
	if integer, err := strconv.ParseInt(literal, 0, 64); err == nil {
		return json.Number(strconv.FormatInt(integer, 10))
	}
	if number, err := strconv.ParseFloat(literal, 64); err == nil {
		return floatValue(number)
	}
	return literal
}

func parseEnv(text string) (tree.Value, error) {
	assignments := 0
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !envAssignment.MatchString(line) {
			return nil, fmt.Errorf("line %q is not an assignment", line)
		}
		assignments++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if assignments == 0 {
		return nil, errors.New("no assignments")
	}

	env, err := gotenv.StrictParse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]KeyValue, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, KeyValue{Key: key, Value: env[key]})
	}
	return Unflatten(pairs, envUnflatten)
}

func parseTOML(text string) (tree.Value, error) {
	var decoded map[string]any
	metadata, err := toml.Decode(text, &decoded)
	if err != nil {
		return nil, err
	}

	positions := map[string]int{}
	for index, key := range metadata.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := positions[path]; !seen {
			positions[path] = index
		}
	}
	return fromTOML(decoded, nil, positions), nil
}

func fromTOML(value any, path []string, positions map[string]int) tree.Value {
	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		position := func(key string) int {
			if index, ok := positions[strings.Join(append(append([]string(nil), path...), key), "\x00")]; ok {
				return index
			}
			return math.MaxInt
		}
		sort.SliceStable(keys, func(i, j int) bool {
			left, right := position(keys[i]), position(keys[j])
			if left != right {
				return left < right
			}
			return keys[i] < keys[j]
		})

		object := tree.NewObject()
		for _, key := range keys {
			object.Set(key, fromTOML(typed[key], append(append([]string(nil), path...), key), positions))
		}
		return object
	case []map[string]any:
		items := make([]any, len(typed))
		for index, item := range typed {
			items[index] = fromTOML(item, path, positions)
		}
		return items
	case []any:
		items := make([]any, len(typed))
		for index, item := range typed {
			items[index] = fromTOML(item, path, positions)
		}
		return items
	case int64:
		return json.Number(strconv.FormatInt(typed, 10))
	case float64:
		return floatValue(typed)
	case bool, string:
		return typed
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(typed)
	}
}

// floatValue keeps integral floats marked as floats so 1.0 does not render
// back as 1.
func floatValue(number float64) tree.Value {
	literal := strconv.FormatFloat(number, 'g', -1, 64)
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return literal
	}
	if !strings.ContainsAny(literal, ".e") {
		literal += ".0"
	}
	return json.Number(literal)
}

func parseYAML(text string) (tree.Value, error) {
	var document yaml.Node
	if err := yaml.Unmarshal([]byte(text), &document); err != nil {
		return nil, err
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, errNotObject
	}
	return fromYAML(document.Content[0])
}

func fromYAML(node *yaml.Node) (tree.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAML(node.Alias)
	case yaml.MappingNode:
		object := tree.NewObject()
		for index := 0; index+1 < len(node.Content); index += 2 {
			value, err := fromYAML(node.Content[index+1])
			if err != nil {
				return nil, err
			}
			object.Set(node.Content[index].Value, value)
		}
		return object, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := fromYAML(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d", node.Kind)
	}
}

func yamlScalar(node *yaml.Node) (tree.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return nil, err
		}
		return flag, nil
	case "!!int", "!!float":
		if jsonNumber.MatchString(node.Value) {
			return json.Number(node.Value), nil
		}
		var number float64
		if err := node.Decode(&number); err != nil {
			return node.Value, nil
		}
		if node.ShortTag() == "!!int" && number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			return json.Number(strconv.FormatInt(int64(number), 10)), nil
		}
		return floatValue(number), nil
	default:
		return node.Value, nil
	}
}

func parseProperties(text string) (tree.Value, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	loaded, err := loader.LoadBytes([]byte(text))
	if err != nil {
		return nil, err
	}

	keys := loaded.Keys()
	if len(keys) == 0 {
		return nil, errors.New("no properties")
	}

	pairs := make([]KeyValue, 0, len(keys))
	for _, key := range keys {
		value, _ := loaded.Get(key)
		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return Unflatten(pairs, propertiesUnflatten)
}
