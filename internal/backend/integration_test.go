//go:build integration

// Integration test against a running ingest backend.
//
// Run: go test -tags=integration ./internal/backend/
package backend_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/joeblew999/plat-ingest/internal/backend"
)

func baseURL() string {
	if u := os.Getenv("INGEST_BACKEND_URL"); u != "" {
		return u
	}
	return "http://localhost:8887"
}

func TestCapabilities(t *testing.T) {
	wmsURL := os.Getenv("INGEST_WMS_URL")
	if wmsURL == "" {
		t.Skip("INGEST_WMS_URL not set")
	}
	layers, err := backend.New(baseURL()).Capabilities(context.Background(), wmsURL)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range layers {
		if l.Name == "" {
			t.Errorf("layer without name: %+v", l)
		}
	}
}

func TestSaveUnknownLayer(t *testing.T) {
	_, err := backend.New(baseURL()).SaveLayer(context.Background(), backend.SaveRequest{
		LayerName: "",
		WMSURL:    "http://invalid.invalid/wms",
	})
	if err == nil {
		t.Skip("backend accepted an empty layer name")
	}
	var te *backend.TransportError
	if errors.As(err, &te) {
		t.Fatalf("backend unreachable at %s: %v", baseURL(), err)
	}
}
