// Package fallback produces a deterministic, clearly-synthetic menu when
// real extraction yields nothing, so downstream consumers always receive a
// well-formed RestaurantMenu. Tagging provenance (real vs. synthetic) is
// the persistence boundary's job, not this package's.
package fallback

import (
	"fmt"
	"hash/fnv"

	"github.com/zestifyre/Zestifyre/models"
)

// syntheticPrefix marks every synthetic description so a human reading the
// data can tell it never came from a listing.
const syntheticPrefix = "[sample] "

// template is one synthetic dish shape. Prices are fixed so output is
// reproducible for a given restaurant name.
type template struct {
	name     string
	desc     string
	price    float64
	category models.Category
}

var templates = []template{
	{"House Salad", "mixed greens with house dressing", 7.49, models.CategoryAppetizer},
	{"Soup of the Day", "ask about today's selection", 5.99, models.CategoryAppetizer},
	{"Signature Burger", "flame-grilled patty with trimmings", 14.99, models.CategoryMain},
	{"Grilled Chicken Plate", "served with seasonal vegetables", 16.49, models.CategoryMain},
	{"Pasta Special", "fresh pasta in house sauce", 15.29, models.CategoryMain},
	{"Seasonal Fish", "catch of the day, simply prepared", 18.99, models.CategoryMain},
	{"Fries", "crispy, salted", 4.49, models.CategorySide},
	{"Garlic Bread", "toasted with herb butter", 4.99, models.CategorySide},
	{"Chocolate Cake", "rich layered chocolate", 6.99, models.CategoryDessert},
	{"Ice Cream", "two scoops, rotating flavours", 4.99, models.CategoryDessert},
	{"Soft Drink", "assorted cans", 2.49, models.CategoryDrink},
	{"Fresh Lemonade", "squeezed to order", 3.99, models.CategoryDrink},
}

// SyntheticMenu builds a deterministic placeholder menu for the given
// restaurant. It never fails, even for an unreachable or empty URL: the
// item subset and order depend only on the restaurant name.
func SyntheticMenu(restaurantName, listingURL string) *models.RestaurantMenu {
	seed := hashName(restaurantName)

	// Between 8 and 12 items, rotated by the seed so different restaurant
	// names produce visibly different (but stable) sample menus.
	count := 8 + int(seed%5)
	offset := int(seed % uint64(len(templates)))

	items := make([]models.MenuItem, 0, count)
	for i := 0; i < count; i++ {
		tpl := templates[(offset+i)%len(templates)]
		items = append(items, models.MenuItem{
			ID:          i + 1,
			Name:        tpl.name,
			Description: syntheticPrefix + tpl.desc,
			Price:       tpl.price,
			Category:    tpl.category,
			IsPopular:   i == 0,
		})
	}

	return models.NewRestaurantMenu(restaurantName, listingURL, items)
}

// IsSynthetic reports whether a menu looks like fallback output.
func IsSynthetic(menu *models.RestaurantMenu) bool {
	if menu == nil || len(menu.Items) == 0 {
		return false
	}
	desc := menu.Items[0].Description
	return len(desc) >= len(syntheticPrefix) && desc[:len(syntheticPrefix)] == syntheticPrefix
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	fmt.Fprint(h, name)
	return h.Sum64()
}
