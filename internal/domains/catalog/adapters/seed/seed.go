// Package seed loads the default menu written to an empty or reset catalog.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

//go:embed default_menu.yaml
var defaultMenu []byte

type menuFile struct {
	Items []menuEntry `yaml:"items"`
}

type menuEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
}

// Default returns the built-in menu.
func Default() ([]domain.Draft, error) {
	return Parse(defaultMenu)
}

// Load reads a menu file, or the built-in menu when path is empty.
func Load(path string) ([]domain.Draft, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML menu.
func Parse(raw []byte) ([]domain.Draft, error) {
	var file menuFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	drafts := make([]domain.Draft, 0, len(file.Items))
	for i, entry := range file.Items {
		price, err := decimal.NewFromString(strings.TrimSpace(entry.Price))
		if err != nil {
			return nil, fmt.Errorf("menu item %d (%s): price: %w", i, entry.Name, err)
		}
		draft := domain.Draft{
			Name:        entry.Name,
			Description: entry.Description,
			Price:       price,
			Category:    entry.Category,
			Image:       entry.Image,
		}
		if _, err := domain.NewMenuItem("", draft); err != nil {
			return nil, fmt.Errorf("menu item %d (%s): %w", i, entry.Name, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}
