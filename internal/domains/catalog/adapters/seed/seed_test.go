package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

func TestDefault_SixItemsInMenuOrder(t *testing.T) {
	drafts, err := Default()
	require.NoError(t, err)
	require.Len(t, drafts, 6)
	require.Equal(t, "Tartare de Wagyu", drafts[0].Name)
	require.Equal(t, "68.00", drafts[0].Price.StringFixed(2))
	require.Equal(t, "Royal Salute 21 Anos", drafts[5].Name)

	desserts := 0
	for _, d := range drafts {
		if d.Category == string(domain.CategoryDesserts) {
			desserts++
		}
	}
	require.Equal(t, 1, desserts)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
items:
  - name: Água com gás
    price: "9.50"
    category: bebidas
`), 0o600))

	drafts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Equal(t, "9.50", drafts[0].Price.StringFixed(2))
}

func TestParse_RejectsInvalidEntries(t *testing.T) {
	_, err := Parse([]byte("items:\n  - name: X\n    price: abc\n    category: bebidas\n"))
	require.Error(t, err)

	_, err = Parse([]byte("items:\n  - name: X\n    price: \"1\"\n    category: lanches\n"))
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
}
