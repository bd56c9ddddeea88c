package client

import (
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/shopify-gql-client/pkg/throttle"
	"github.com/rs/zerolog"
)

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid config",
			config: Config{
				ShopURL:     "https://test.myshopify.com",
				AccessToken: "token",
			},
			expectError: false,
		},
		{
			name: "missing shop URL",
			config: Config{
				AccessToken: "token",
			},
			expectError: true,
			errorMsg:    "shop URL is required",
		},
		{
			name: "missing access token",
			config: Config{
				ShopURL: "https://test.myshopify.com",
			},
			expectError: true,
			errorMsg:    "access token is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewSession(tt.config)
			if tt.expectError {
				if err == nil {
					t.Fatal("NewSession() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error = %q, want containing %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSession() error = %v", err)
			}
			if session == nil {
				t.Fatal("NewSession() returned nil session")
			}
		})
	}
}

func TestNewSession_NormalizesShopURL(t *testing.T) {
	tests := []struct {
		name     string
		shopURL  string
		expected string
	}{
		{
			name:     "trailing slash",
			shopURL:  "https://test.myshopify.com/",
			expected: "https://test.myshopify.com",
		},
		{
			name:     "surrounding whitespace",
			shopURL:  "  https://test.myshopify.com  ",
			expected: "https://test.myshopify.com",
		},
		{
			name:     "already normalized",
			shopURL:  "https://test.myshopify.com",
			expected: "https://test.myshopify.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewSession(Config{ShopURL: tt.shopURL, AccessToken: "token"})
			if err != nil {
				t.Fatalf("NewSession() error = %v", err)
			}
			if session.ShopURL != tt.expected {
				t.Errorf("ShopURL = %q, want %q", session.ShopURL, tt.expected)
			}
		})
	}
}

func TestNewSession_GraphQLURL(t *testing.T) {
	session, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "token",
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	want := "https://test.myshopify.com/admin/api/2025-01/graphql.json"
	if session.GraphQLURL != want {
		t.Errorf("GraphQLURL = %q, want %q", session.GraphQLURL, want)
	}
}

func TestNewSession_APIVersionOverride(t *testing.T) {
	session, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "token",
		APIVersion:  "2024-10",
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	want := "https://test.myshopify.com/admin/api/2024-10/graphql.json"
	if session.GraphQLURL != want {
		t.Errorf("GraphQLURL = %q, want %q", session.GraphQLURL, want)
	}
}

func TestNewSession_SharedThrottleController(t *testing.T) {
	controller := throttle.New(throttle.DefaultConfig(), zerolog.Nop())

	first, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "token-a",
		Throttle:    controller,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	second, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "token-b",
		Throttle:    controller,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if first.Throttle != second.Throttle {
		t.Error("sessions with an explicit controller must share it")
	}
}

func TestNewSession_Defaults(t *testing.T) {
	session, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "token",
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if session.Throttle == nil {
		t.Error("expected auto-created throttle controller")
	}
	if session.Transport == nil {
		t.Error("expected default transport")
	}
	if session.retry.MaxAttempts != 3 {
		t.Errorf("retry.MaxAttempts = %d, want 3", session.retry.MaxAttempts)
	}
	if session.retry.InitialBackoff != time.Second {
		t.Errorf("retry.InitialBackoff = %v, want 1s", session.retry.InitialBackoff)
	}
}

func TestSession_Headers(t *testing.T) {
	session, err := NewSession(Config{
		ShopURL:     "https://test.myshopify.com",
		AccessToken: "secret-token",
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	headers := session.headers()
	if headers["X-Shopify-Access-Token"] != "secret-token" {
		t.Errorf("access token header = %q", headers["X-Shopify-Access-Token"])
	}
	if headers["Content-Type"] != "application/json" {
		t.Errorf("content type header = %q", headers["Content-Type"])
	}
}
