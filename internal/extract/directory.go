package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/vendor-intake/internal/patterns"
)

// Directory maps normalized company names to logo URLs. A nil Directory is
// valid and resolves nothing.
type Directory map[string]string

// NewDirectory builds a Directory from display names, normalizing each key.
func NewDirectory(entries map[string]string) Directory {
	d := make(Directory, len(entries))
	for name, url := range entries {
		key := patterns.NormalizeKey(name)
		if key == "" || url == "" {
			continue
		}
		d[key] = url
	}
	return d
}

// LoadDirectory reads a YAML mapping of company name to logo URL.
func LoadDirectory(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read logo table %s", path)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "extract: parse logo table %s", path)
	}
	return NewDirectory(entries), nil
}

// Lookup returns the logo URL registered for name, or "".
func (d Directory) Lookup(name string) string {
	if len(d) == 0 || name == "" {
		return ""
	}
	return d[patterns.NormalizeKey(name)]
}
