package extraction

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Category is a merged business category and the labels that count towards it
type Category struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
}

// categoriesFile is the on-disk layout of a category table
type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// CategoryTable is an ordered, immutable set of categories.
// Keys are unique; aliases may repeat across categories.
type CategoryTable struct {
	categories []Category
}

// NewCategoryTable validates and copies the given categories
func NewCategoryTable(categories []Category) (*CategoryTable, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("category table is empty")
	}

	seen := make(map[string]struct{}, len(categories))
	copied := make([]Category, 0, len(categories))
	for i, c := range categories {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return nil, fmt.Errorf("category %d: key is required", i)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("category %s: duplicate key", key)
		}
		seen[key] = struct{}{}

		if len(c.Aliases) == 0 {
			return nil, fmt.Errorf("category %s: at least one alias is required", key)
		}
		aliases := make([]string, len(c.Aliases))
		for j, alias := range c.Aliases {
			// internal spacing is significant, only reject blank aliases
			if strings.TrimSpace(alias) == "" {
				return nil, fmt.Errorf("category %s: alias %d is empty", key, j)
			}
			aliases[j] = alias
		}
		copied = append(copied, Category{Key: key, Aliases: aliases})
	}

	return &CategoryTable{categories: copied}, nil
}

// ParseCategoryTable reads a YAML category table
func ParseCategoryTable(data []byte) (*CategoryTable, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing category table: %w", err)
	}
	return NewCategoryTable(file.Categories)
}

// LoadCategoryTable reads a YAML category table from path.
// An empty path returns the built-in table.
func LoadCategoryTable(path string) (*CategoryTable, error) {
	if path == "" {
		return DefaultCategoryTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category table: %w", err)
	}
	return ParseCategoryTable(data)
}

// DefaultCategoryTable returns the built-in category table
func DefaultCategoryTable() *CategoryTable {
	table, err := ParseCategoryTable(defaultCategoriesYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// Categories returns a copy of the categories in declared order
func (t *CategoryTable) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Key: c.Key, Aliases: append([]string(nil), c.Aliases...)}
	}
	return out
}

// Keys returns the category keys in declared order
func (t *CategoryTable) Keys() []string {
	keys := make([]string, len(t.categories))
	for i, c := range t.categories {
		keys[i] = c.Key
	}
	return keys
}

// Len returns the number of categories
func (t *CategoryTable) Len() int {
	return len(t.categories)
}
