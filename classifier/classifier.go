// Package classifier buckets menu items into categories by keyword
// membership. The keyword table is what evolves, not the logic.
package classifier

import (
	"strings"

	"github.com/zestifyre/Zestifyre/models"
)

// categoryKeywords maps each category to its signal words. Tables are
// checked in the order of the entries slice below; the first hit wins.
// Keywords are matched as substrings of the lowercased item text, so
// "cheeseburger" hits "burger".
var categoryKeywords = map[models.Category][]string{
	models.CategoryAppetizer: {
		"appetizer", "starter", "spring roll", "egg roll", "dumpling",
		"edamame", "bruschetta", "calamari", "wings", "nachos", "samosa",
		"gyoza", "satay", "tapas", "bites",
	},
	models.CategoryDessert: {
		"dessert", "cake", "ice cream", "gelato", "brownie", "cookie",
		"cheesecake", "tiramisu", "pudding", "pie", "mochi", "churro",
		"baklava", "sundae", "tart", "donut", "doughnut",
	},
	models.CategoryDrink: {
		"drink", "beverage", "soda", "juice", "coffee", "latte", "espresso",
		"tea", "smoothie", "shake", "lemonade", "water", "cola", "lassi",
		"kombucha", "bubble tea", "boba",
	},
	models.CategorySide: {
		"side", "fries", "rice", "naan", "bread", "coleslaw", "salad",
		"chips", "onion ring", "garlic knot", "mashed potato", "slaw",
		"pickles", "roti", "papadum",
	},
	models.CategoryMain: {
		"burger", "pizza", "pasta", "sandwich", "wrap", "bowl", "curry",
		"steak", "chicken", "fish", "burrito", "taco", "noodle", "ramen",
		"pho", "sushi", "roll", "biryani", "entree", "entrée", "platter",
		"kebab", "shawarma", "pad thai", "risotto", "lasagna",
	},
}

// classifyOrder fixes the table evaluation order so classification is
// deterministic. More specific buckets run before the broad main-dish one.
var classifyOrder = []models.Category{
	models.CategoryDessert,
	models.CategoryDrink,
	models.CategoryAppetizer,
	models.CategorySide,
	models.CategoryMain,
}

// Classify maps an item's name and description to a category. It is pure:
// the same text always yields the same category, default CategoryOther.
func Classify(name, description string) models.Category {
	text := strings.ToLower(name + " " + description)
	for _, cat := range classifyOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				return cat
			}
		}
	}
	return models.CategoryOther
}
