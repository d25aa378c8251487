package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/net/html"

	"github.com/tunelar/web/internal/config"
	"github.com/tunelar/web/internal/logging"
	"github.com/tunelar/web/internal/server"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		Environment:     "development",
		LogLevel:        "error",
		LogFormat:       "text",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MetricsEnabled:  true,
	}
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	router, err := server.NewRouter(testConfig(), logging.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// page is what the tests care about in a rendered document.
type page struct {
	status int
	title  string
	links  []link
	main   string // text content of <main>
	mainEl bool
	body   string
}

type link struct {
	label string
	href  string
}

func get(t *testing.T, srv *httptest.Server, path string) page {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc, err := html.Parse(strings.NewReader(string(raw)))
	require.NoError(t, err)

	p := page{status: resp.StatusCode, body: string(raw)}
	walk(doc, &p, false)
	return p
}

func walk(n *html.Node, p *page, inNav bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			p.title = text(n)
		case "nav":
			inNav = true
		case "a":
			if inNav {
				p.links = append(p.links, link{label: text(n), href: attr(n, "href")})
			}
		case "main":
			p.mainEl = true
			p.main = text(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, p, inNav)
	}
}

func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var wantLinks = []link{
	{label: "Home", href: "/"},
	{label: "Browse", href: "/browse"},
	{label: "Upload", href: "/upload"},
	{label: "Profile", href: "/profile"},
}

func TestPagesRenderPlaceholder(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		path    string
		heading string
		text    string
	}{
		{"/", "Home Page", "Welcome to Tunelar"},
		{"/browse", "Browse Page", "Browse samples here"},
		{"/upload", "Upload Page", "Upload your samples here"},
		{"/profile", "Profile Page", "User profile information"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p := get(t, srv, tt.path)

			assert.Equal(t, http.StatusOK, p.status)
			assert.Equal(t, tt.heading+" | Tunelar", p.title)
			assert.Equal(t, tt.heading+tt.text, p.main)
		})
	}
}

func TestNavbarIsStableAcrossPaths(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/", "/browse", "/upload", "/profile", "/browse/loops", "/nonexistent"} {
		t.Run(path, func(t *testing.T) {
			p := get(t, srv, path)
			assert.Equal(t, wantLinks, p.links)
		})
	}
}

func TestFollowingNavLinksSelectsView(t *testing.T) {
	srv := testServer(t)

	// Start somewhere unmatched and walk the bar as a user would.
	links := get(t, srv, "/nonexistent").links
	require.Len(t, links, 4)

	for _, l := range links {
		t.Run(l.label, func(t *testing.T) {
			p := get(t, srv, l.href)
			assert.Equal(t, http.StatusOK, p.status)
			assert.True(t, strings.HasPrefix(p.main, l.label+" Page"), "main = %q", p.main)
		})
	}
}

func TestUploadScenario(t *testing.T) {
	p := get(t, testServer(t), "/upload")
	assert.Contains(t, p.main, "Upload your samples here")
}

func TestUnmatchedPathRendersEmptyMain(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/nonexistent", "/browser", "/uploads", "/index.html"} {
		t.Run(path, func(t *testing.T) {
			p := get(t, srv, path)

			assert.Equal(t, http.StatusNotFound, p.status)
			assert.True(t, p.mainEl)
			assert.Empty(t, p.main)
			assert.Equal(t, wantLinks, p.links)
			assert.Equal(t, "Tunelar", p.title)
		})
	}
}

func TestPrefixRoutes(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		path    string
		heading string
	}{
		{"/browse/", "Browse Page"},
		{"/browse/drums/808", "Browse Page"},
		{"/upload/batch", "Upload Page"},
		{"/profile/settings", "Profile Page"},
		{"//profile", "Profile Page"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p := get(t, srv, tt.path)
			assert.Equal(t, http.StatusOK, p.status)
			assert.True(t, strings.HasPrefix(p.main, tt.heading), "main = %q", p.main)
		})
	}
}

func TestHeadRequest(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.Client().Head(srv.URL + "/browse")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthAndStatic(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = srv.Client().Get(srv.URL + "/static/app.css")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	get(t, srv, "/browse")
	get(t, srv, "/nonexistent")

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), `tunelar_http_requests_total{method="GET",route="/browse",status="200"} 1`)
	assert.Contains(t, string(body), `tunelar_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false

	router, err := server.NewRouter(cfg, logging.Discard(), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_MetricsWithoutRegistry(t *testing.T) {
	_, err := server.NewRouter(testConfig(), logging.Discard(), nil)
	assert.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	router, err := server.NewRouter(cfg, logging.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.New(cfg, router, logging.Discard()).Serve(ctx, ln)
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "-1"

	err := server.New(cfg, http.NotFoundHandler(), logging.Discard()).ListenAndServe(context.Background())
	assert.Error(t, err)
}

func TestRecoveredPanicIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	router, err := server.NewRouter(testConfig(), logging.Discard(), reg)
	require.NoError(t, err)

	router.(chi.Router).Get("/explode", func(w http.ResponseWriter, r *http.Request) {
		panic("feedback loop")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/explode", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	want := `
# HELP tunelar_http_requests_total HTTP requests served, by route pattern, method and status.
# TYPE tunelar_http_requests_total counter
tunelar_http_requests_total{method="GET",route="/explode",status="500"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "tunelar_http_requests_total"))
}

func TestForwardedForTrustedOnlyBehindProxy(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantIP     string
	}{
		{"untrusted", false, "192.0.2.1:1234"},
		{"trusted", true, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.TrustProxy = tt.trustProxy

			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))
			router, err := server.NewRouter(cfg, logger, prometheus.NewRegistry())
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
			router.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantIP, entry["ip"])
		})
	}
}
