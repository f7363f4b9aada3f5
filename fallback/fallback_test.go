package fallback

import (
	"reflect"
	"testing"
)

func TestSyntheticMenu_Deterministic(t *testing.T) {
	a := SyntheticMenu("Test Bistro", "https://example.com/ca/store/test-bistro")
	b := SyntheticMenu("Test Bistro", "https://example.com/ca/store/test-bistro")

	if !reflect.DeepEqual(a.Items, b.Items) {
		t.Error("same restaurant name produced different synthetic items")
	}
	if !reflect.DeepEqual(a.Categories, b.Categories) {
		t.Error("same restaurant name produced different categories")
	}
}

func TestSyntheticMenu_WellFormed(t *testing.T) {
	menu := SyntheticMenu("Anywhere Diner", "")

	if len(menu.Items) < 8 {
		t.Fatalf("expected at least 8 synthetic items, got %d", len(menu.Items))
	}
	for i, item := range menu.Items {
		if item.Name == "" {
			t.Errorf("item %d has empty name", i)
		}
		if item.Price < 0 {
			t.Errorf("item %d has negative price %v", i, item.Price)
		}
		if !item.Category.Valid() {
			t.Errorf("item %d has invalid category %q", i, item.Category)
		}
		if item.ID != i+1 {
			t.Errorf("item %d has ID %d, want %d", i, item.ID, i+1)
		}
	}

	// Categories must be the distinct projection of item categories.
	seen := map[string]bool{}
	for _, item := range menu.Items {
		seen[string(item.Category)] = true
	}
	if len(menu.Categories) != len(seen) {
		t.Errorf("categories length %d != distinct item categories %d", len(menu.Categories), len(seen))
	}
	for _, c := range menu.Categories {
		if !seen[string(c)] {
			t.Errorf("category %q not present in items", c)
		}
	}
}

func TestSyntheticMenu_DifferentNamesDiffer(t *testing.T) {
	a := SyntheticMenu("Alpha House", "")
	b := SyntheticMenu("Zeta Kitchen", "")

	if reflect.DeepEqual(a.Items, b.Items) {
		// Not strictly impossible, but with rotation + count variation it
		// would mean the hash collided, worth flagging.
		t.Error("distinct restaurant names produced identical synthetic menus")
	}
}

func TestIsSynthetic(t *testing.T) {
	menu := SyntheticMenu("Test Bistro", "")
	if !IsSynthetic(menu) {
		t.Error("IsSynthetic returned false for fallback output")
	}
	if IsSynthetic(nil) {
		t.Error("IsSynthetic returned true for nil menu")
	}
}
