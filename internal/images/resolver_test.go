package images

import (
	"testing"

	"github.com/kyomu-reader/kyomu/internal/config"
)

func TestCDNResolver(t *testing.T) {
	r := &CDNResolver{Domain: "cdn.example.com"}

	tests := []struct {
		key  string
		want string
	}{
		{"covers/x.jpg", "https://cdn.example.com/covers/x.jpg"},
		{"/covers/x.jpg", "https://cdn.example.com/covers/x.jpg"},
		{"https://other.example.com/full.png", "https://other.example.com/full.png"},
		{"http://insecure.example.com/full.png", "http://insecure.example.com/full.png"},
	}
	for _, tt := range tests {
		got, err := r.ResolveURL(tt.key)
		if err != nil {
			t.Fatalf("ResolveURL(%q) returned error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNewResolverValidation(t *testing.T) {
	cfg := &config.Config{}

	cfg.Images.Strategy = "cdn"
	if _, err := NewResolver(cfg); err == nil {
		t.Error("Expected error for cdn strategy without a domain")
	}

	cfg.Images.CDNDomain = "cdn.example.com"
	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	if _, ok := r.(*CDNResolver); !ok {
		t.Errorf("Expected a CDNResolver, got %T", r)
	}

	cfg.Images.Strategy = "teleport"
	if _, err := NewResolver(cfg); err == nil {
		t.Error("Expected error for unknown strategy")
	}

	cfg.Images.Strategy = "signed"
	if _, err := NewResolver(cfg); err == nil {
		t.Error("Expected error for signed strategy without a bucket")
	}
}
