package models

import "time"

// Category buckets a menu item. Classification is heuristic; anything the
// keyword table cannot place lands in CategoryOther.
type Category string

const (
	CategoryAppetizer Category = "appetizer"
	CategoryMain      Category = "main"
	CategoryDessert   Category = "dessert"
	CategoryDrink     Category = "drink"
	CategorySide      Category = "side"
	CategoryOther     Category = "other"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{
	CategoryAppetizer,
	CategoryMain,
	CategoryDessert,
	CategoryDrink,
	CategorySide,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItem is one extracted dish. Name is always non-empty: nodes that fail
// name extraction are discarded, never stored with placeholder names.
type MenuItem struct {
	// ID is a scrape-local sequence number, starting at 1 in document order.
	ID int `json:"id"`

	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	ImageURL    string   `json:"image_url,omitempty"`
	IsPopular   bool     `json:"is_popular"`
}

// RestaurantMenu is the pipeline's terminal value. Categories is always the
// de-duplicated projection of Items (first-appearance order); callers must
// never mutate it independently; use WithItems to derive a filtered copy.
type RestaurantMenu struct {
	RestaurantName string     `json:"restaurant_name"`
	SourceURL      string     `json:"source_url"`
	Items          []MenuItem `json:"items"`
	Categories     []Category `json:"categories"`
	ScrapedAt      time.Time  `json:"scraped_at"`
}

// NewRestaurantMenu builds a menu and derives Categories from items.
func NewRestaurantMenu(name, sourceURL string, items []MenuItem) *RestaurantMenu {
	return &RestaurantMenu{
		RestaurantName: name,
		SourceURL:      sourceURL,
		Items:          items,
		Categories:     distinctCategories(items),
		ScrapedAt:      time.Now().UTC(),
	}
}

// WithItems returns a copy of the menu holding the given item subset, with
// Categories re-derived so the projection invariant holds after filtering
// or truncation.
func (m *RestaurantMenu) WithItems(items []MenuItem) *RestaurantMenu {
	out := *m
	out.Items = items
	out.Categories = distinctCategories(items)
	return &out
}

func distinctCategories(items []MenuItem) []Category {
	seen := make(map[Category]struct{}, len(Categories))
	out := make([]Category, 0, len(Categories))
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
