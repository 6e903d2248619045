//go:build integration

package client_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/adamwoolhether/imagedl/client"
)

func TestIntegration_HeadRemoteImage(t *testing.T) {
	c, err := client.Build(client.WithTimeout(30 * time.Second))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	header, status, err := c.Head(t.Context(), "https://picsum.photos/64/64")
	if err != nil {
		t.Fatalf("head failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("exp 200 after redirects, got %d", status)
	}
	if ct := header.Get("Content-Type"); ct == "" {
		t.Error("exp a content type")
	}
}

func TestIntegration_FetchRemoteImage(t *testing.T) {
	c, err := client.Build(client.WithTimeout(30 * time.Second))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	body, _, err := c.Fetch(t.Context(), "https://picsum.photos/64/64")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("downloaded image is empty")
	}
}
