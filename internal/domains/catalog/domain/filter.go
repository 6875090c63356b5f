package domain

import "strings"

// FilterAll selects every category.
const FilterAll = "all"

// Filter restricts the menu to one category, or none when All is set.
type Filter struct {
	category Category
}

// AllCategories is the filter a fresh session starts with.
var AllCategories = Filter{}

// ParseFilter accepts a category name or "all". "todas" and the empty string
// are accepted as aliases of "all".
func ParseFilter(raw string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", FilterAll, "todas":
		return AllCategories, nil
	}
	category, err := ParseCategory(raw)
	if err != nil {
		return Filter{}, err
	}
	return Filter{category: category}, nil
}

// All reports whether the filter lets every item through.
func (f Filter) All() bool {
	return f.category == ""
}

// Category returns the selected category, empty for the "all" filter.
func (f Filter) Category() Category {
	return f.category
}

func (f Filter) String() string {
	if f.All() {
		return FilterAll
	}
	return string(f.category)
}

// Matches reports whether item passes the filter.
func (f Filter) Matches(item MenuItem) bool {
	return f.All() || item.Category == f.category
}

// Apply returns the subsequence of items matching the filter, keeping order.
func (f Filter) Apply(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}
