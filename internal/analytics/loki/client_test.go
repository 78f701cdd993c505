package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func capturePush(t *testing.T, status int) (*httptest.Server, *PushRequest, *string) {
	t.Helper()
	var got PushRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("unmarshal push body: %v", err)
		}
		w.WriteHeader(status)
	}))
	return srv, &got, &path
}

func TestPushEvent(t *testing.T) {
	srv, got, path := capturePush(t, http.StatusNoContent)
	defer srv.Close()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	err := PushEvent(context.Background(), srv.URL, ts, `{"hello":"world"}`, map[string]string{
		"event_type": "page_view",
		"domain":     "bad domain!",
	})
	if err != nil {
		t.Fatalf("PushEvent: %v", err)
	}
	if *path != "/loki/api/v1/push" {
		t.Errorf("path = %q", *path)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %+v", got.Streams)
	}
	stream := got.Streams[0]
	if stream.Stream["job"] != "webstack" {
		t.Errorf("job label = %q", stream.Stream["job"])
	}
	if stream.Stream["event_type"] != "page_view" {
		t.Errorf("event_type label = %q", stream.Stream["event_type"])
	}
	if stream.Stream["domain"] != "bad_domain_" {
		t.Errorf("domain label = %q, want sanitized", stream.Stream["domain"])
	}
	if len(stream.Values) != 1 || len(stream.Values[0]) != 2 {
		t.Fatalf("values = %+v", stream.Values)
	}
	if stream.Values[0][1] != `{"hello":"world"}` {
		t.Errorf("line = %q", stream.Values[0][1])
	}
}

func TestPushEventJSON_ExtractsLabels(t *testing.T) {
	srv, got, _ := capturePush(t, http.StatusNoContent)
	defer srv.Close()

	event := `{"eventType":"session_start","domain":"example.com","userId":"user-1","createdAt":"2026-08-01T12:00:00Z"}`
	if err := PushEventJSON(context.Background(), srv.URL, []byte(event)); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	stream := got.Streams[0]
	if stream.Stream["event_type"] != "session_start" || stream.Stream["domain"] != "example.com" || stream.Stream["user_id"] != "user-1" {
		t.Errorf("labels = %v", stream.Stream)
	}
	wantNs := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).UnixNano()
	if stream.Values[0][0] != strconv.FormatInt(wantNs, 10) {
		t.Errorf("timestamp = %q, want %d", stream.Values[0][0], wantNs)
	}
}

func TestPushEventJSON_RawLineOnParseFailure(t *testing.T) {
	srv, got, _ := capturePush(t, http.StatusNoContent)
	defer srv.Close()

	if err := PushEventJSON(context.Background(), srv.URL, []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	stream := got.Streams[0]
	if stream.Values[0][1] != "not json" {
		t.Errorf("line = %q", stream.Values[0][1])
	}
	if len(stream.Stream) != 1 || stream.Stream["job"] != "webstack" {
		t.Errorf("labels = %v, want job only", stream.Stream)
	}
}

func TestPushEvent_Non2xx(t *testing.T) {
	srv, _, _ := capturePush(t, http.StatusInternalServerError)
	defer srv.Close()

	if err := PushEvent(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Error("expected error on 500")
	}
}

func TestPushEvent_EmptyBaseURL(t *testing.T) {
	if err := PushEvent(context.Background(), "", time.Now(), "line", nil); err == nil {
		t.Error("expected error for empty base URL")
	}
}
