package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zestifyre/Zestifyre/classifier"
	"github.com/zestifyre/Zestifyre/models"
)

// pricePattern tolerates currency symbols, thousands separators and
// European decimal commas: "$12.99", "CA$1,299.00", "12,99 €".
var pricePattern = regexp.MustCompile(`(?:[$€£¥]|CA\$|US\$|C\$)\s*([0-9]{1,5}(?:[.,][0-9]{3})*(?:[.,][0-9]{1,2})?)|([0-9]{1,5}(?:[.,][0-9]{1,2})?)\s*(?:[$€£¥])`)

// denylistWords mark nodes that are review/FAQ/rating furniture rather
// than menu items; such nodes are discarded before extraction.
var denylistWords = []string{
	"review", "frequently asked", "faq", "ratings", "rating summary",
	"terms of service", "privacy policy", "see all", "people also",
}

// popularWords flag items the listing highlights.
var popularWords = []string{"popular", "most liked", "best seller", "bestseller", "#1"}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// nameSelectors and descSelectors are the per-node extraction hints, in
// preference order.
var (
	nameSelectors = []string{"h1", "h2", "h3", "h4", "h5", "h6", `[class*=name]`, `[data-testid*=title]`, `[class*=title]`, "span"}
	descSelectors = []string{"p", `[class*=desc]`, `[data-testid*=desc]`}
)

// extractItems turns candidate item nodes into MenuItems. Nodes that fail
// name extraction or match the denylist are dropped silently; an item
// never reaches the result with an empty name. IDs are assigned in
// document order starting at startID+1.
func extractItems(nodes *goquery.Selection, startID int) []models.MenuItem {
	if nodes == nil {
		return nil
	}
	nodes = topLevelNodes(nodes)

	items := make([]models.MenuItem, 0, nodes.Length())
	id := startID
	nodes.Each(func(_ int, node *goquery.Selection) {
		item, ok := extractItem(node)
		if !ok {
			return
		}
		id++
		item.ID = id
		items = append(items, item)
	})
	return items
}

// extractItem pulls one MenuItem out of a node. The bool result is false
// when the node is denylisted or yields no usable name.
func extractItem(node *goquery.Selection) (models.MenuItem, bool) {
	text := normalizeSpace(node.Text())
	if text == "" {
		return models.MenuItem{}, false
	}

	lower := strings.ToLower(text)
	for _, word := range denylistWords {
		if strings.Contains(lower, word) {
			return models.MenuItem{}, false
		}
	}

	name := extractName(node)
	if name == "" {
		return models.MenuItem{}, false
	}

	desc := firstMatchText(node, descSelectors)
	if desc == name {
		desc = ""
	}

	item := models.MenuItem{
		Name:        name,
		Description: desc,
		Price:       ParsePrice(text),
		ImageURL:    firstImageURL(node),
		IsPopular:   containsAny(lower, popularWords),
	}
	item.Category = classifier.Classify(item.Name, item.Description)
	return item, true
}

// topLevelNodes drops nodes that are descendants of another node in the
// same set, so substring selectors matching a card and its children only
// yield the card.
func topLevelNodes(nodes *goquery.Selection) *goquery.Selection {
	matched := make(map[*html.Node]struct{}, nodes.Length())
	for _, n := range nodes.Nodes {
		matched[n] = struct{}{}
	}
	return nodes.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for p := s.Get(0).Parent; p != nil; p = p.Parent {
			if _, ok := matched[p]; ok {
				return false
			}
		}
		return true
	})
}

// extractName walks the name hint selectors in order and returns the
// first descendant text that is not just a price token. With no
// structured hit, the first usable trimmed line of the node's own text
// stands in; a node without even that is discarded by the caller.
func extractName(node *goquery.Selection) string {
	for _, sel := range nameSelectors {
		name := ""
		node.Find(sel).EachWithBreak(func(_ int, found *goquery.Selection) bool {
			if text := firstLineOf(found.Text()); text != "" && !isPriceOnly(text) {
				name = text
				return false
			}
			return true
		})
		if name != "" {
			return name
		}
	}
	for _, line := range strings.Split(node.Text(), "\n") {
		if trimmed := normalizeSpace(line); trimmed != "" && !isPriceOnly(trimmed) {
			return trimmed
		}
	}
	return ""
}

// isPriceOnly reports whether text is nothing but a price token.
func isPriceOnly(text string) bool {
	return strings.TrimSpace(pricePattern.ReplaceAllString(text, "")) == ""
}

// firstMatchText returns the first selector's first non-empty trimmed
// text, cut at the first line break so nested badges don't bleed in.
func firstMatchText(node *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		found := node.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if text := firstLineOf(found.Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstImageURL returns the first image's source attribute, preferring
// src and falling back to the common lazy-load attributes.
func firstImageURL(node *goquery.Selection) string {
	img := node.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := img.Attr(attr); ok && v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func firstLineOf(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := normalizeSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ParsePrice extracts a price from free text. It never fails: text with no
// recognizable numeric price ("Market Price") yields 0.
func ParsePrice(text string) float64 {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}

	// Decide whether ',' is a decimal or thousands separator.
	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")
	switch {
	case lastComma > lastDot:
		// "12,99" or "1.299,50": comma is the decimal separator.
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	default:
		raw = strings.ReplaceAll(raw, ",", "")
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// priceAnchoredNodes is the page-wide fallback: every element whose own
// text carries a price token becomes an anchor, and its nearest card-like
// ancestor becomes an item node. Used when no section hint matched or the
// section produced nothing.
func priceAnchoredNodes(doc *goquery.Document) *goquery.Selection {
	seen := make(map[*html.Node]struct{})
	anchors := doc.Find("span, div, p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		own := ownText(s)
		return own != "" && pricePattern.MatchString(own)
	})

	result := doc.Selection.Slice(0, 0)
	anchors.Each(func(_ int, s *goquery.Selection) {
		card := cardAncestor(s)
		if card == nil || card.Length() == 0 {
			return
		}
		n := card.Get(0)
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		result = result.AddSelection(card)
	})
	return result
}

// cardAncestor climbs from a price anchor to the element most likely to be
// the full item card: the closest li, or a div ancestor a few levels up.
func cardAncestor(s *goquery.Selection) *goquery.Selection {
	if li := s.Closest("li"); li.Length() > 0 {
		return li
	}
	card := s
	for i := 0; i < 3; i++ {
		parent := card.Parent()
		if parent.Length() == 0 || goquery.NodeName(parent) == "body" {
			break
		}
		card = parent
	}
	if goquery.NodeName(card) != "div" && goquery.NodeName(card) != "li" {
		return nil
	}
	return card
}

// ownText returns the node's direct text content, excluding descendants.
func ownText(s *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
	}
	return normalizeSpace(sb.String())
}

var spaceRun = regexp.MustCompile(`[ \t\r\f]+`)

// normalizeSpace trims and collapses horizontal whitespace runs, keeping
// line breaks so "first line" extraction still works.
func normalizeSpace(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
