package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// SectionStrategy is one structural hint for locating the menu region of a
// listing page. Strategies are data, not branching logic: the runner walks
// the ordered table and the first strategy with at least one match wins.
// The table is a starting point, not a guaranteed-correct algorithm;
// extend it as new page structures show up.
type SectionStrategy struct {
	Name     string
	Selector string
	matcher  goquery.Matcher
}

// sectionStrategies is the ordered hint table for the menu section.
// Marker attributes first (most reliable), class-name substrings after.
var sectionStrategies = []SectionStrategy{
	{Name: "menu-marker-attr", Selector: `[data-testid*=menu], [data-test*=menu]`},
	{Name: "item-marker-attr", Selector: `[data-testid*=store-catalog], [data-testid*=catalog]`},
	{Name: "menu-class", Selector: `[class*=menu]`},
	{Name: "dish-class", Selector: `[class*=dish], [class*=product]`},
	{Name: "main-list", Selector: `main ul`},
}

// itemSelectors locates item nodes inside a chosen section, again in
// preference order.
var itemSelectors = []string{
	`[data-testid*=item]`,
	`[class*=item]`,
	`li`,
}

func init() {
	// Pre-parse the section selectors once; a typo in the table is a
	// programming error and should fail loudly at startup.
	for i := range sectionStrategies {
		sectionStrategies[i].matcher = cascadia.MustCompile(sectionStrategies[i].Selector)
	}
}

// locateMenuSection runs the strategy table against the document and
// returns the matched selections plus the winning strategy name. A nil
// selection means no hint matched and extraction should go page-wide.
func locateMenuSection(doc *goquery.Document) (*goquery.Selection, string) {
	for _, strategy := range sectionStrategies {
		sel := doc.FindMatcher(strategy.matcher)
		if sel.Length() > 0 {
			return sel, strategy.Name
		}
	}
	return nil, ""
}

// itemNodes finds candidate item nodes inside the section using the first
// item selector that matches anything.
func itemNodes(section *goquery.Selection) *goquery.Selection {
	for _, selector := range itemSelectors {
		nodes := section.Find(selector)
		if nodes.Length() > 0 {
			return nodes
		}
	}
	return nil
}
