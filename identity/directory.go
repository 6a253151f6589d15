package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"xdao.co/ledgertrust/compositekey"
	"xdao.co/ledgertrust/party"
)

// Entry is one party in a directory file.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	// Key is the owning key in canonical text form.
	Key string `json:"key" yaml:"key"`
}

// LoadDirectory reads a list of entries from path (YAML for .yaml/.yml,
// JSON otherwise) and registers them in a new Memory.
func LoadDirectory(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &entries)
	default:
		err = json.Unmarshal(b, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", path, err)
	}

	m := NewMemory()
	for i, e := range entries {
		key, err := compositekey.Parse(e.Key)
		if err != nil {
			return nil, fmt.Errorf("identity: entry %d (%q): %w", i, e.Name, err)
		}
		p, err := party.NewFull(e.Name, key)
		if err != nil {
			return nil, fmt.Errorf("identity: entry %d: %w", i, err)
		}
		if err := m.Register(p); err != nil {
			return nil, fmt.Errorf("identity: entry %d: %w", i, err)
		}
	}
	return m, nil
}
