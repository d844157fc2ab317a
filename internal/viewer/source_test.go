package viewer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchSource_Local(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.stl")
	if err := os.WriteFile(path, []byte("solid part\nendsolid part\n"), 0644); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}

	src := NewFetchSource(time.Second)
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()

	for _, location := range []string{path, fileURL} {
		data, err := src.Read(context.Background(), location)
		if err != nil {
			t.Errorf("%s: %v", location, err)
			continue
		}
		if string(data) != "solid part\nendsolid part\n" {
			t.Errorf("%s: unexpected contents %q", location, data)
		}
	}

	if _, err := src.Read(context.Background(), filepath.Join(dir, "missing.stl")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFetchSource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.ply":
			w.Write([]byte("ply\n"))
		case "/slow.ply":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("ply\n"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	src := NewFetchSource(time.Second)

	data, err := src.Read(context.Background(), srv.URL+"/ok.ply")
	if err != nil || string(data) != "ply\n" {
		t.Errorf("expected body, got %q %v", data, err)
	}

	if _, err := src.Read(context.Background(), srv.URL+"/broken.ply"); !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("expected ErrHTTPStatus, got %v", err)
	}

	short := NewFetchSource(20 * time.Millisecond)
	if _, err := short.Read(context.Background(), srv.URL+"/slow.ply"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestFetchSource_UnsupportedScheme(t *testing.T) {
	src := NewFetchSource(0)
	if _, err := src.Read(context.Background(), "ftp://example.com/model.stl"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.ply")
	if err := os.WriteFile(path, []byte("ply"), 0644); err != nil {
		t.Fatalf("failed to write model: %v", err)
	}

	data, err := FileSource{}.Read(context.Background(), path)
	if err != nil || string(data) != "ply" {
		t.Errorf("expected contents, got %q %v", data, err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/home/user/models/part.stl", "part.stl"},
		{"part.PLY", "part.PLY"},
		{"https://example.com/scans/bunny.ply?rev=3", "bunny.ply"},
		{"file:///tmp/cube.stl", "cube.stl"},
	}

	for _, tt := range tests {
		if got := displayName(tt.in); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
