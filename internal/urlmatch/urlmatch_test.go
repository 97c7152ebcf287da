package urlmatch

import (
	"errors"
	"testing"

	"github.com/ziadkadry99/labelkit/internal/model"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		url     string
		want    bool
	}{
		{"https://example.com/*", "https://example.com/page?x=1", true},
		{"https://example.com/*", "http://example.com/page", false},
		{"https://example.com/*", "https://example.com/", true},
		{"https://example.com/*", "https://example.com", false},
		{"*://shop.example.com/orders/*", "https://shop.example.com/orders/42", true},
		{"https://example.com/page", "https://example.com/page/extra", false},
		// Dots are not escaped, so they match any character.
		{"https://example.com/*", "https://exampleXcom/a", true},
		{"*", "", true},
	}
	for _, tt := range tests {
		got, err := Match(tt.pattern, tt.url)
		if err != nil {
			t.Fatalf("Match(%q, %q): %v", tt.pattern, tt.url, err)
		}
		if got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.url, got, tt.want)
		}
	}
}

func TestMatchInvalidPattern(t *testing.T) {
	ok, err := Match("https://example.com/(*", "https://example.com/(x")
	if ok {
		t.Error("invalid pattern matched")
	}
	var pe *PatternError
	if !errors.As(err, &pe) || pe.Pattern != "https://example.com/(*" {
		t.Errorf("err = %v, want *PatternError", err)
	}
}

func TestFirstMatch(t *testing.T) {
	sites := []model.Site{
		{ID: "bad", Name: "Bad", URIPattern: "https://shop.com/[*"},
		{ID: "narrow", Name: "Orders", URIPattern: "https://shop.com/orders/*"},
		{ID: "wide", Name: "Shop", URIPattern: "https://shop.com/*"},
	}

	got, ok := FirstMatch(sites, "https://shop.com/orders/1", nil)
	if !ok || got.ID != "narrow" {
		t.Errorf("FirstMatch orders = %+v, %v", got, ok)
	}

	got, ok = FirstMatch(sites, "https://shop.com/cart", nil)
	if !ok || got.ID != "wide" {
		t.Errorf("FirstMatch cart = %+v, %v", got, ok)
	}

	// Order decides between overlapping patterns.
	reversed := []model.Site{sites[2], sites[1]}
	if got, _ := FirstMatch(reversed, "https://shop.com/orders/1", nil); got.ID != "wide" {
		t.Errorf("FirstMatch reversed = %+v", got)
	}

	if _, ok := FirstMatch(sites, "https://other.com/", nil); ok {
		t.Error("unexpected match")
	}
}
