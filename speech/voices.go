package speech

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed voices.toml
var defaultVoices []byte

// referenceIDPattern matches a raw Fish.audio model id.
var referenceIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Voice is one entry of the voice table.
type Voice struct {
	ReferenceID string `toml:"reference_id"`
	Description string `toml:"description"`
}

// VoiceTable maps public voice ids to provider voices.
type VoiceTable struct {
	Default string           `toml:"default"`
	Voices  map[string]Voice `toml:"voices"`
}

// DefaultVoiceTable returns the built-in table.
func DefaultVoiceTable() *VoiceTable {
	table, err := ParseVoiceTable(defaultVoices)
	if err != nil {
		panic(fmt.Sprintf("built-in voice table: %v", err))
	}
	return table
}

// LoadVoiceTable reads a table from path, or returns the built-in table when
// path is empty.
func LoadVoiceTable(path string) (*VoiceTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultVoiceTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice table: %w", err)
	}
	return ParseVoiceTable(data)
}

// ParseVoiceTable decodes and validates a TOML voice table.
func ParseVoiceTable(data []byte) (*VoiceTable, error) {
	var table VoiceTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse voice table: %w", err)
	}
	if len(table.Voices) == 0 {
		return nil, fmt.Errorf("voice table has no voices")
	}
	if _, ok := table.Voices[table.Default]; !ok {
		return nil, fmt.Errorf("voice table default %q is not defined", table.Default)
	}
	return &table, nil
}

// Resolve returns the provider reference id for a public voice id. A raw
// provider reference id is passed through unchanged. Unknown or empty ids
// resolve to the default voice.
func (t *VoiceTable) Resolve(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if v, ok := t.Voices[id]; ok {
		return v.ReferenceID
	}
	if referenceIDPattern.MatchString(id) {
		return id
	}
	return t.Voices[t.Default].ReferenceID
}

// IDs lists the public voice ids in sorted order.
func (t *VoiceTable) IDs() []string {
	ids := make([]string, 0, len(t.Voices))
	for id := range t.Voices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
