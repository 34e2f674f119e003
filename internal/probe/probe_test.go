package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/model"
)

// refsTo builds external references to the given URLs in discovery order.
func refsTo(urls ...string) []model.Reference {
	refs := make([]model.Reference, 0, len(urls))
	for i, u := range urls {
		refs = append(refs, model.Reference{
			Source: "index.html",
			Raw:    u,
			Kind:   model.KindExternal,
			Target: u,
			Index:  i,
		})
	}
	return refs
}

func newTestClient(t *testing.T, opts ClientOptions) *http.Client {
	t.Helper()

	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	client, err := NewHTTPClient(opts)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

// TestProber tests sampling, ordering and failure classification of probes.
func TestProber(t *testing.T) {
	t.Parallel()

	t.Run("reports error statuses as best-effort findings", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/ok":
				w.WriteHeader(http.StatusOK)
			case "/gone":
				w.WriteHeader(http.StatusNotFound)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		defer srv.Close()

		p := NewProber(newTestClient(t, ClientOptions{}))
		result := p.Probe(context.Background(), refsTo(srv.URL+"/ok", srv.URL+"/gone", srv.URL+"/boom"))

		if result.Probed != 3 || result.Interrupted {
			t.Errorf("expected 3 completed probes, got %d (interrupted=%v)", result.Probed, result.Interrupted)
		}
		if len(result.Findings) != 2 {
			t.Fatalf("expected 2 findings, got %d", len(result.Findings))
		}
		if result.Findings[0].StatusCode != http.StatusNotFound || result.Findings[1].StatusCode != http.StatusInternalServerError {
			t.Errorf("unexpected status codes %d, %d", result.Findings[0].StatusCode, result.Findings[1].StatusCode)
		}
		for _, f := range result.Findings {
			if !f.BestEffort || f.Reason != model.ReasonHTTPStatus {
				t.Errorf("expected best-effort HTTP status finding, got %+v", f)
			}
		}
	})

	t.Run("probes with HEAD", func(t *testing.T) {
		t.Parallel()

		var method atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			method.Store(r.Method)
		}))
		defer srv.Close()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(context.Background(), refsTo(srv.URL))

		if len(result.Findings) != 0 {
			t.Errorf("expected no findings, got %v", result.Findings)
		}
		if got := method.Load(); got != http.MethodHead {
			t.Errorf("method = %v, want HEAD", got)
		}
	})

	t.Run("falls back to GET when HEAD is rejected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(context.Background(), refsTo(srv.URL))

		if result.Probed != 1 || len(result.Findings) != 0 {
			t.Errorf("expected 1 clean probe, got probed=%d findings=%v", result.Probed, result.Findings)
		}
	})

	t.Run("follows redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(context.Background(), refsTo(srv.URL+"/old"))

		if len(result.Findings) != 0 {
			t.Errorf("expected no findings, got %v", result.Findings)
		}
	})

	t.Run("redirect loop becomes a finding", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Redirect(w, r, r.URL.Path, http.StatusFound)
		}))
		defer srv.Close()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(context.Background(), refsTo(srv.URL+"/loop"))

		if result.Probed != 1 {
			t.Errorf("expected 1 probe, got %d", result.Probed)
		}
		if len(result.Findings) != 1 {
			t.Fatalf("expected the loop to be reported, got %v", result.Findings)
		}
		f := result.Findings[0]
		if f.Reason != model.ReasonTransport || !f.BestEffort {
			t.Errorf("expected best-effort transport finding, got %+v", f)
		}
		if !strings.Contains(f.Error, ErrTooManyRedirects.Error()) {
			t.Errorf("error = %q, want it to mention %q", f.Error, ErrTooManyRedirects)
		}
		if n := hits.Load(); n != maxRedirects {
			t.Errorf("expected %d requests, got %d", maxRedirects, n)
		}
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		var agent atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			agent.Store(r.UserAgent())
		}))
		defer srv.Close()

		client := newTestClient(t, ClientOptions{UserAgent: "linkcheck-test/1.0"})
		NewProber(client).Probe(context.Background(), refsTo(srv.URL))

		if got := agent.Load(); got != "linkcheck-test/1.0" {
			t.Errorf("user agent = %v, want linkcheck-test/1.0", got)
		}
	})

	t.Run("transport failure becomes a finding", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		addr := srv.URL
		srv.Close()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(context.Background(), refsTo(addr))

		if result.Probed != 1 {
			t.Errorf("expected 1 probe, got %d", result.Probed)
		}
		if len(result.Findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(result.Findings))
		}
		f := result.Findings[0]
		if f.Reason != model.ReasonTransport || f.Error == "" || !f.BestEffort {
			t.Errorf("expected best-effort transport finding with an error, got %+v", f)
		}
	})

	t.Run("timeout becomes a finding", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := newTestClient(t, ClientOptions{Timeout: 50 * time.Millisecond})
		result := NewProber(client).Probe(context.Background(), refsTo(srv.URL))

		if len(result.Findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(result.Findings))
		}
		if result.Findings[0].Error != "timeout" {
			t.Errorf("error = %q, want timeout", result.Findings[0].Error)
		}
	})

	t.Run("probes only the sample", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		urls := make([]string, 0, 25)
		for i := range 25 {
			urls = append(urls, fmt.Sprintf("%s/page/%d", srv.URL, i))
		}

		p := NewProber(newTestClient(t, ClientOptions{}), WithSampleSize(10), WithConcurrency(3))
		result := p.Probe(context.Background(), refsTo(urls...))

		if result.Probed != 10 {
			t.Errorf("expected 10 probes, got %d", result.Probed)
		}
		if n := hits.Load(); n != 10 {
			t.Errorf("expected 10 requests, got %d", n)
		}
	})

	t.Run("findings keep discovery order", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Earlier links answer later.
			if r.URL.Path == "/0" {
				time.Sleep(50 * time.Millisecond)
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		p := NewProber(newTestClient(t, ClientOptions{}), WithConcurrency(4))
		result := p.Probe(context.Background(), refsTo(srv.URL+"/0", srv.URL+"/1", srv.URL+"/2"))

		if len(result.Findings) != 3 {
			t.Fatalf("expected 3 findings, got %d", len(result.Findings))
		}
		for i, f := range result.Findings {
			if want := fmt.Sprintf("%s/%d", srv.URL, i); f.Link != want {
				t.Errorf("finding %d: link = %q, want %q", i, f.Link, want)
			}
		}
	})

	t.Run("cancelled context abandons probes", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := NewProber(newTestClient(t, ClientOptions{})).Probe(ctx, refsTo(srv.URL, srv.URL))

		if !result.Interrupted {
			t.Error("expected the result to be marked interrupted")
		}
		if result.Probed != 0 || len(result.Findings) != 0 {
			t.Errorf("expected nothing probed, got probed=%d findings=%v", result.Probed, result.Findings)
		}
	})
}

// TestNewHTTPClient tests proxy configuration.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		proxy   string
		wantErr error
	}{
		{"no proxy", "", nil},
		{"socks5 proxy", "socks5://127.0.0.1:1080", nil},
		{"socks5h proxy", "socks5h://127.0.0.1:9050", nil},
		{"http proxy", "http://proxy.example.com:3128", nil},
		{"unsupported scheme", "ftp://proxy.example.com", ErrUnsupportedProxy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewHTTPClient(ClientOptions{Timeout: time.Second, Proxy: tt.proxy})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.Timeout != time.Second {
				t.Errorf("timeout = %v, want 1s", client.Timeout)
			}
		})
	}
}
