package utils

import (
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes the TOML file at path into v. Keys that v has no field
// for are logged and otherwise ignored.
func LoadTOMLFile(path string, v any) error {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	for _, key := range md.Undecoded() {
		log.Debugf("Ignoring unknown key %q in %s", key.String(), path)
	}
	return nil
}

// TOMLTable is a decoded TOML table without a schema.
type TOMLTable map[string]any

// ParseTOMLTables decodes the file at path without a target struct, so values
// of the wrong type can be skipped one by one.
func ParseTOMLTables(path string) (TOMLTable, error) {
	root := make(TOMLTable)
	if _, err := toml.DecodeFile(path, (*map[string]any)(&root)); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return root, nil
}

// Table returns the sub-table name.
func (t TOMLTable) Table(name string) (TOMLTable, bool) {
	sub, ok := t[name].(map[string]any)
	return TOMLTable(sub), ok
}

// GetInt returns key when it holds an integer.
func (t TOMLTable) GetInt(key string) (int, bool) {
	v, ok := t[key].(int64)
	return int(v), ok
}

// GetString returns key when it holds a string.
func (t TOMLTable) GetString(key string) (string, bool) {
	v, ok := t[key].(string)
	return v, ok
}
