package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c, srv
}

func TestAutocomplete(t *testing.T) {
	var gotQuery map[string]string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"input":        q.Get("input"),
			"key":          q.Get("key"),
			"types":        q.Get("types"),
			"sessiontoken": q.Get("sessiontoken"),
		}
		w.Write([]byte(`{"status":"OK","predictions":[
			{"description":"Joe's Plumbing, Main St, Springfield","place_id":"ChIJ123"},
			{"description":"Joe's Pizza, Oak Ave, Springfield","place_id":"ChIJ456"}
		]}`))
	})
	defer srv.Close()

	preds, err := c.Autocomplete(context.Background(), "joe's", "sess-1")
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("predictions = %+v", preds)
	}
	if preds[0].PlaceID != "ChIJ123" || preds[0].Description == "" {
		t.Errorf("prediction = %+v", preds[0])
	}
	if gotQuery["input"] != "joe's" || gotQuery["key"] != "test-key" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotQuery["types"] != "establishment" {
		t.Errorf("types = %q", gotQuery["types"])
	}
	if gotQuery["sessiontoken"] != "sess-1" {
		t.Errorf("sessiontoken = %q", gotQuery["sessiontoken"])
	}
}

func TestAutocomplete_ZeroResults(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	})
	defer srv.Close()

	preds, err := c.Autocomplete(context.Background(), "zzzzzz", "")
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(preds) != 0 {
		t.Errorf("predictions = %+v, want none", preds)
	}
}

func TestAutocomplete_UpstreamDenied(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED"}`))
	})
	defer srv.Close()

	if _, err := c.Autocomplete(context.Background(), "joe", ""); err == nil {
		t.Error("expected error for denied request")
	}
}

func TestAutocomplete_MissingInput(t *testing.T) {
	c := NewClient("test-key")
	if _, err := c.Autocomplete(context.Background(), "   ", ""); !errors.Is(err, ErrMissingInput) {
		t.Errorf("err = %v, want ErrMissingInput", err)
	}
}

func TestAutocomplete_NoKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Autocomplete(context.Background(), "joe", ""); err == nil {
		t.Error("expected error without API key")
	}
}
