package audio

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLocatorLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "audio"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "audio", "ka.mp3"), []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(t.TempDir(), "kha.mp3")
	if err := os.WriteFile(abs, []byte("absolute"), 0644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/audio/ga.mp3" {
			w.Write([]byte("remote"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loc := &Locator{Root: root, BaseURL: srv.URL}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{name: "asset root", ref: "/audio/ka.mp3", want: "local"},
		{name: "absolute path", ref: abs, want: "absolute"},
		{name: "base URL fallback", ref: "/audio/ga.mp3", want: "remote"},
		{name: "direct URL", ref: srv.URL + "/audio/ga.mp3", want: "remote"},
		{name: "remote 404", ref: "/audio/nga.mp3", wantErr: true},
		{name: "empty", ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loc.Load(context.Background(), tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Load(%q) = %q, want error", tt.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.ref, err)
			}
			if string(got) != tt.want {
				t.Errorf("Load(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestLocatorMissingWithoutBaseURL(t *testing.T) {
	loc := &Locator{Root: t.TempDir()}
	_, err := loc.Load(context.Background(), "/audio/ka.mp3")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLocatorHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&Locator{}).Load(ctx, srv.URL+"/audio/ka.mp3"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestLocatorRejectsOversizedClips(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "audio"), 0755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"fits.mp3": "12345678", "big.mp3": "123456789"} {
		if err := os.WriteFile(filepath.Join(root, "audio", name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("123456789"))
	}))
	defer srv.Close()

	loc := &Locator{Root: root, MaxSize: 8}

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "file at limit", ref: "/audio/fits.mp3"},
		{name: "file over limit", ref: "/audio/big.mp3", wantErr: true},
		{name: "remote over limit", ref: srv.URL + "/audio/big.mp3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loc.Load(context.Background(), tt.ref)
			if tt.wantErr {
				if !errors.Is(err, ErrClipTooLarge) {
					t.Errorf("Load(%q) = %d bytes, %v; want ErrClipTooLarge", tt.ref, len(got), err)
				}
				return
			}
			if err != nil || len(got) != 8 {
				t.Errorf("Load(%q) = %d bytes, %v; want 8 bytes", tt.ref, len(got), err)
			}
		})
	}
}
