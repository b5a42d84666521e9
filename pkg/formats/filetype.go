// Package formats converts configuration text to and from the canonical tree.
package formats

import (
	"path/filepath"
	"strings"
)

// FileType identifies a configuration serialization format.
type FileType string

const (
	JSON       FileType = "json"
	JSON5      FileType = "json5"
	TOML       FileType = "toml"
	YAML       FileType = "yaml"
	Properties FileType = "properties"
	Env        FileType = "env"
)

// ParseOrder is the sniff chain used by Parse. The first format that yields
// an object wins, so content valid in several formats resolves to the
// earliest one.
var ParseOrder = [...]FileType{JSON, JSON5, Env, TOML, YAML, Properties}

// FromFilename resolves the format declared by a filename extension.
func FromFilename(filename string) (FileType, bool) {
	switch strings.TrimPrefix(filepath.Ext(filename), ".") {
	case "json":
		return JSON, true
	case "json5":
		return JSON5, true
	case "toml":
		return TOML, true
	case "yaml", "yml":
		return YAML, true
	case "properties":
		return Properties, true
	case "env":
		return Env, true
	default:
		return "", false
	}
}
