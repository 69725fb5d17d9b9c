package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcherRevalidates(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	f := NewFetcher(0)
	first, err := f.Fetch(context.Background(), srv.URL+"/cal.ics?token=secret")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.Fetch(context.Background(), srv.URL+"/cal.ics?token=secret")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) || hits != 2 {
		t.Fatalf("hits=%d first=%q second=%q", hits, first, second)
	}
}

func TestFetcherRejectsScheme(t *testing.T) {
	if _, err := NewFetcher(0).Fetch(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected error for file url")
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://example.com/private/abc.ics?token=x")
	if got != "https://example.com/...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
}
