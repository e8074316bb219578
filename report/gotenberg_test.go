package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRenderHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 10); err != nil {
			t.Errorf("unexpected parse error: %v", err)
		}
		if got := r.FormValue("waitDelay"); got != "500ms" {
			t.Errorf("unexpected waitDelay %q", got)
		}
		file, header, err := r.FormFile("files")
		if err != nil {
			t.Errorf("missing file: %v", err)
		} else {
			defer file.Close()
			data, _ := io.ReadAll(file)
			if header.Filename != "index.html" || !strings.Contains(string(data), "<h1>") {
				t.Errorf("unexpected upload %s", header.Filename)
			}
		}
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", WithWaitDelay(500*time.Millisecond))
	data, err := client.RenderHTML(context.Background(), "<h1>Rooms</h1>")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected payload %q", string(data))
	}
}

func TestRenderHTMLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<p></p>")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Ping(context.Background()); err != nil {
		t.Fatalf("ping error: %v", err)
	}
}
