package resolver

import "testing"

func TestIsListingURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://marketplace.example/ca/store/some-id", true},
		{"https://marketplace.example/store/some-id", true},
		{"https://www.ubereats.com/ca/store/test-bistro/AbC123", true},
		{"https://marketplace.example/ca/store/some-id/", true},
		{"https://marketplace.example/about", false},
		{"https://marketplace.example/", false},
		{"https://marketplace.example/ca/store/", false},
		{"https://marketplace.example/search?q=bistro", false},
		{"https://marketplace.example/ca/store/some-id?mod=quickView", false},
		{"https://marketplace.example/ca/store/some-id?search=1", false},
		{"https://marketplace.example/ca/store/some-id?redirectedFrom=browse", false},
		{"https://marketplace.example/ca/store/some-id?utm_source=mail", true},
		{"ftp://marketplace.example/ca/store/some-id", false},
		{"/ca/store/some-id", false}, // no host
		{"not a url at all ::", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsListingURL(tt.url); got != tt.want {
			t.Errorf("IsListingURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsListingURL_Pure(t *testing.T) {
	const url = "https://marketplace.example/ca/store/some-id"
	first := IsListingURL(url)
	for i := 0; i < 100; i++ {
		if IsListingURL(url) != first {
			t.Fatal("IsListingURL returned different results for the same input")
		}
	}
}

func TestNormalizeListingURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"HTTPS://Marketplace.Example/ca/store/some-id/", "https://marketplace.example/ca/store/some-id"},
		{"https://marketplace.example/ca/store/some-id?utm_source=x#menu", "https://marketplace.example/ca/store/some-id"},
		{"https://marketplace.example/ca/store/some-id", "https://marketplace.example/ca/store/some-id"},
	}

	for _, tt := range tests {
		if got := NormalizeListingURL(tt.url); got != tt.want {
			t.Errorf("NormalizeListingURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Test Bistro", "test-bistro"},
		{"Joe's Pizza & Pasta", "joe-s-pizza-pasta"},
		{"  CAFÉ  ", "caf"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
