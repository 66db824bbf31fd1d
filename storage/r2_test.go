package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.test/arena/")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]string{
		"standings/a-1.json":  "https://cdn.example.test/arena/standings/a-1.json",
		"/standings/a-1.json": "https://cdn.example.test/arena/standings/a-1.json",
		"":                    "",
	}
	for key, want := range cases {
		if got := publicURL(base, key); got != want {
			t.Errorf("publicURL(%q) = %q, want %q", key, got, want)
		}
	}
	if got := publicURL(nil, "standings/a-1.json"); got != "" {
		t.Errorf("expected no URL without a base, got %q", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	full := CloudflareR2Config{AccountID: "acc", AccessKeyID: "id", SecretAccessKey: "secret", BucketName: "b"}
	if !full.Enabled() {
		t.Fatal("expected enabled")
	}
	if got := full.endpoint(); got != "https://acc.r2.cloudflarestorage.com" {
		t.Fatalf("unexpected endpoint %q", got)
	}

	local := full
	local.AccountID = ""
	local.Endpoint = "http://localhost:9000"
	if !local.Enabled() || local.endpoint() != "http://localhost:9000" {
		t.Fatalf("expected the endpoint override to be used: %+v", local)
	}

	missing := full
	missing.BucketName = ""
	if missing.Enabled() {
		t.Fatal("a config without bucket must be disabled")
	}
	if _, err := NewCloudflareR2Store(context.Background(), missing); err == nil {
		t.Fatal("expected an error for an incomplete config")
	}
}

// fakeBucket is just enough of the S3 API for PutObject and DeleteObject.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = string(data)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestObjectStoreAgainstS3CompatibleEndpoint(t *testing.T) {
	bucket := &fakeBucket{objects: make(map[string]string)}
	server := httptest.NewServer(bucket)
	defer server.Close()

	objects, err := NewCloudflareR2Store(context.Background(), CloudflareR2Config{
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		BucketName:      "arena",
		PublicBaseURL:   "https://cdn.example.test",
		Endpoint:        server.URL,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	result, err := objects.Put(context.Background(), Object{
		Key:          "standings/cup-1.json",
		ContentType:  "application/json",
		CacheControl: "public, max-age=60",
		Body:         []byte(`{"ok":true}`),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if result.Key != "standings/cup-1.json" || result.ETag != "abc123" || result.URL != "https://cdn.example.test/standings/cup-1.json" {
		t.Fatalf("unexpected result: %+v", result)
	}

	bucket.mu.Lock()
	body := bucket.objects["/arena/standings/cup-1.json"]
	bucket.mu.Unlock()
	if !strings.Contains(body, `{"ok":true}`) {
		t.Fatalf("object not stored under the path-style key, have %v", bucket.objects)
	}

	if err := objects.Remove(context.Background(), "standings/cup-1.json"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	if len(bucket.objects) != 0 {
		t.Fatalf("expected the object to be deleted, have %v", bucket.objects)
	}
}
