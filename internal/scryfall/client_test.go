package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/abc-123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "abc-123",
			"oracle_id": "oracle-1",
			"name": "Lightning Bolt",
			"set": "lea",
			"collector_number": "161",
			"color_identity": ["R"],
			"finishes": ["nonfoil"],
			"prices": {"usd": "350.00"}
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	card, err := client.GetCard(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}

	if card.Name != "Lightning Bolt" {
		t.Errorf("Name = %q, want %q", card.Name, "Lightning Bolt")
	}
	if card.ColorIdentityString() != "R" {
		t.Errorf("ColorIdentityString() = %q, want %q", card.ColorIdentityString(), "R")
	}
	if card.FoilAvailable() {
		t.Error("FoilAvailable() = true for nonfoil-only printing")
	}
}

func TestGetCardByName(t *testing.T) {
	tests := []struct {
		name      string
		fuzzy     bool
		wantParam string
	}{
		{name: "exact lookup", fuzzy: false, wantParam: "exact"},
		{name: "fuzzy lookup", fuzzy: true, wantParam: "fuzzy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotParam string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("exact") != "" {
					gotParam = "exact"
				} else if q.Get("fuzzy") != "" {
					gotParam = "fuzzy"
				}
				_, _ = w.Write([]byte(`{"id":"x","name":"Shock"}`))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			if _, err := client.GetCardByName(context.Background(), "Shock", tt.fuzzy); err != nil {
				t.Fatalf("GetCardByName() error = %v", err)
			}
			if gotParam != tt.wantParam {
				t.Errorf("query param = %q, want %q", gotParam, tt.wantParam)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.GetCardByName(context.Background(), "Lihgtning Blot", false)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestTransientErrorIsNotNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"object":"error","code":"unavailable","status":503,"details":"maintenance"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.GetCard(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = true for transient failure", err)
	}
}

func TestFoilAvailable(t *testing.T) {
	card := &Card{Finishes: []string{"nonfoil", "foil"}}
	if !card.FoilAvailable() {
		t.Error("FoilAvailable() = false, want true")
	}
}

func TestImagesFallsBackToFrontFace(t *testing.T) {
	card := &Card{
		CardFaces: []CardFace{
			{Name: "Delver of Secrets", ImageURIs: &ImageURIs{Small: "front.jpg"}},
			{Name: "Insectile Aberration"},
		},
	}
	imgs := card.Images()
	if imgs == nil || imgs.Small != "front.jpg" {
		t.Errorf("Images() = %+v, want front face URIs", imgs)
	}
}
