package jobchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/octobees/lead-qualifier/internal/entity"
)

func TestHTTPProfileSource_Snapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/profiles" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("url") != "https://profiles.example/joao" {
			t.Fatalf("unexpected profile url: %s", r.URL.Query().Get("url"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"company":"CloudCo","role":"CTO"}}`))
	}))
	defer server.Close()

	source := NewHTTPProfileSource(server.Client(), server.URL)
	observation, err := source.Snapshot(context.Background(), entity.TrackedContact{
		ProfileURL: "https://profiles.example/joao",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observation == nil || observation.Company != "CloudCo" || observation.Role != "CTO" {
		t.Fatalf("unexpected observation: %+v", observation)
	}
}

func TestHTTPProfileSource_NotFoundMeansNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPProfileSource(server.Client(), server.URL)
	observation, err := source.Snapshot(context.Background(), entity.TrackedContact{ProfileURL: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observation != nil {
		t.Fatalf("expected nil observation, got %+v", observation)
	}
}

func TestHTTPProfileSource_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewHTTPProfileSource(server.Client(), server.URL)
	if _, err := source.Snapshot(context.Background(), entity.TrackedContact{ProfileURL: "x"}); err == nil {
		t.Fatalf("expected error for upstream failure")
	}
}

func TestHTTPProfileSource_EmptyPayloadMeansNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	source := NewHTTPProfileSource(server.Client(), server.URL)
	observation, err := source.Snapshot(context.Background(), entity.TrackedContact{ProfileURL: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observation != nil {
		t.Fatalf("expected nil observation for empty payload, got %+v", observation)
	}
}
