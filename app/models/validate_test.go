package models

import (
	"strings"
	"testing"
)

func TestServiceValidate(t *testing.T) {
	valid := Service{
		Title: "1 Month Key",
		Slug:  "1-month-key",
		Price: 9.99,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid service rejected: %v", err)
	}

	tests := []struct {
		name string
		svc  Service
	}{
		{name: "missing title", svc: Service{Slug: "x", Price: 1}},
		{name: "missing slug", svc: Service{Title: "x", Price: 1}},
		{name: "zero price", svc: Service{Title: "x", Slug: "x", Price: 0}},
		{name: "negative price", svc: Service{Title: "x", Slug: "x", Price: -1}},
		{name: "overlong title", svc: Service{Title: strings.Repeat("a", 256), Slug: "x", Price: 1}},
	}
	for _, tt := range tests {
		if err := tt.svc.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestPageValidate(t *testing.T) {
	valid := Page{
		Title:   "Terms of Service",
		Slug:    "terms",
		Content: "<p>Terms</p>",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid page rejected: %v", err)
	}

	tests := []struct {
		name string
		page Page
	}{
		{name: "missing title", page: Page{Slug: "terms", Content: "x"}},
		{name: "missing slug", page: Page{Title: "Terms", Content: "x"}},
		{name: "empty content", page: Page{Title: "Terms", Slug: "terms"}},
	}
	for _, tt := range tests {
		if err := tt.page.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}
