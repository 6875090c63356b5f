package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleMenu() []MenuItem {
	mk := func(id, name, price string, c Category) MenuItem {
		return MenuItem{ID: id, Name: name, Price: decimal.RequireFromString(price), Category: c}
	}
	return []MenuItem{
		mk("1", "Tartare de Wagyu", "68.00", CategoryStarters),
		mk("2", "Vieiras Seladas", "85.00", CategoryStarters),
		mk("3", "Risoto de Açafrão & Camarão", "92.00", CategoryMains),
		mk("4", "Tornedor ao Molho Poivre", "110.00", CategoryMains),
		mk("5", "Mousse de Chocolate Belga", "38.00", CategoryDesserts),
		mk("6", "Royal Salute 21 Anos", "120.00", CategoryDrinks),
	}
}

func TestNewMenuItem_Valid(t *testing.T) {
	item, err := NewMenuItem("abc", Draft{
		Name:     "  Tartare de Wagyu ",
		Price:    decimal.RequireFromString("68"),
		Category: "Entradas",
		Image:    "https://images.unsplash.com/photo-1519708227418-c8fd9a3a2b7b?auto=format&fit=crop&w=800&q=80",
	})
	require.NoError(t, err)
	require.Equal(t, "Tartare de Wagyu", item.Name)
	require.Equal(t, CategoryStarters, item.Category)
	require.Equal(t, "68.00", item.DisplayPrice())
}

func TestNewMenuItem_Invalid(t *testing.T) {
	base := Draft{Name: "Mousse", Price: decimal.NewFromInt(38), Category: "sobremesas"}

	cases := map[string]struct {
		mutate func(*Draft)
		want   error
	}{
		"empty name":      {func(d *Draft) { d.Name = "  " }, ErrEmptyName},
		"negative price":  {func(d *Draft) { d.Price = decimal.NewFromInt(-1) }, ErrNegativePrice},
		"sub-cent price":  {func(d *Draft) { d.Price = decimal.RequireFromString("1.005") }, ErrInvalidPrecision},
		"unknown categ":   {func(d *Draft) { d.Category = "lanches" }, ErrUnknownCategory},
		"relative image":  {func(d *Draft) { d.Image = "/img/mousse.png" }, ErrInvalidImageURL},
		"non-http scheme": {func(d *Draft) { d.Image = "ftp://example.com/a.png" }, ErrInvalidImageURL},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			draft := base
			tc.mutate(&draft)
			_, err := NewMenuItem("id", draft)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewMenuItem_ZeroPriceAllowed(t *testing.T) {
	item, err := NewMenuItem("w", Draft{Name: "Água", Price: decimal.Zero, Category: "bebidas"})
	require.NoError(t, err)
	require.Equal(t, "0.00", item.DisplayPrice())
}

func TestFilter_SingleDessert(t *testing.T) {
	filter, err := ParseFilter("sobremesas")
	require.NoError(t, err)

	filtered := filter.Apply(sampleMenu())
	require.Len(t, filtered, 1)
	require.Equal(t, "Mousse de Chocolate Belga", filtered[0].Name)
}

func TestFilter_AllPreservesOrder(t *testing.T) {
	for _, raw := range []string{"all", "todas", "", " ALL "} {
		filter, err := ParseFilter(raw)
		require.NoError(t, err)
		require.True(t, filter.All())
		require.Equal(t, sampleMenu(), filter.Apply(sampleMenu()))
	}
}

func TestFilter_KeepsInsertionOrder(t *testing.T) {
	filter, err := ParseFilter("entradas")
	require.NoError(t, err)
	filtered := filter.Apply(sampleMenu())
	require.Equal(t, []string{"1", "2"}, []string{filtered[0].ID, filtered[1].ID})
	require.Equal(t, "entradas", filter.String())
}

func TestParseFilter_Unknown(t *testing.T) {
	_, err := ParseFilter("lanches")
	require.ErrorIs(t, err, ErrUnknownCategory)
}
