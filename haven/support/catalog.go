// haven/support/catalog.go
package support

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

const (
	CategoryEmergency = "emergency"
	CategorySupport   = "support"
	CategoryFinancial = "financial"
)

// Resource is a support service offered to the person chatting.
type Resource struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"type" yaml:"type"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Chat     string `json:"chat,omitempty" yaml:"chat,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// KeywordTable holds the trigger phrases of each scanned tier.
type KeywordTable struct {
	ImmediateDanger []string `yaml:"immediate_danger"`
	High            []string `yaml:"high"`
	Moderate        []string `yaml:"moderate"`
}

type catalogFile struct {
	Resources []Resource   `yaml:"resources"`
	Keywords  KeywordTable `yaml:"keywords"`
}

// Catalog bundles the resource list with the assessor built from the keyword
// table. It is read-only once loaded and safe for concurrent use.
type Catalog struct {
	resources []Resource
	assessor  *Assessor
}

// DefaultCatalog loads the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalog reads a catalog from a YAML file. An empty path selects the
// embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, res := range file.Resources {
		if res.Name == "" {
			return nil, fmt.Errorf("resource %d has no name", i)
		}
		switch res.Category {
		case CategoryEmergency, CategorySupport, CategoryFinancial:
		default:
			return nil, fmt.Errorf("resource %q has unknown type %q", res.Name, res.Category)
		}
	}
	assessor, err := NewAssessor(file.Keywords)
	if err != nil {
		return nil, err
	}
	return &Catalog{resources: file.Resources, assessor: assessor}, nil
}

// Resources returns a copy of every resource in catalog order.
func (c *Catalog) Resources() []Resource {
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

func (c *Catalog) Assess(text string) RiskResult {
	return c.assessor.Assess(text)
}

func (c *Catalog) Recommend(level RiskLevel) []Resource {
	return Recommend(level, c.resources)
}
