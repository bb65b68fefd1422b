package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetCachesToDisk(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, "tiles")

	body, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "payload" {
		t.Fatalf("unexpected body: %s", body)
	}

	body2, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body2) != "payload" {
		t.Fatalf("unexpected cached body: %s", body2)
	}
	if hits != 1 {
		t.Fatalf("expected exactly one upstream request, got %d", hits)
	}
}

func TestGetRetriesOnFailureThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New("", "")
	body, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body: %s", body)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestGetFailsAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New("", "")
	_, err := f.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
}

func TestPostSendsBodyAndCachesByBody(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		w.Write(buf[:n])
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, "overpass")

	body, err := f.Post(context.Background(), srv.URL, "text/plain", []byte("query-a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "query-a" {
		t.Fatalf("unexpected body: %s", body)
	}

	cached, err := f.Post(context.Background(), srv.URL, "text/plain", []byte("query-a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(cached) != "query-a" || hits != 1 {
		t.Fatalf("expected a cached repeat of query-a, got %q after %d request(s)", cached, hits)
	}

	other, err := f.Post(context.Background(), srv.URL, "text/plain", []byte("query-b"))
	if err != nil {
		t.Fatal(err)
	}
	if string(other) != "query-b" || hits != 2 {
		t.Fatalf("expected a different body to miss the cache, got %q after %d request(s)", other, hits)
	}
}
