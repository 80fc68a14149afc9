package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neonvisitors/internal/config"
)

const upstreamSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="140" height="24"><text>7</text></svg>`

type upstreamRecorder struct {
	mu      sync.Mutex
	queries []url.Values
	raw     []string
	uas     []string
}

func (r *upstreamRecorder) last() (url.Values, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.queries) - 1
	return r.queries[n], r.raw[n], r.uas[n]
}

func newUpstream(t *testing.T, status int) (*httptest.Server, *upstreamRecorder) {
	t.Helper()
	rec := &upstreamRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.queries = append(rec.queries, r.URL.Query())
		rec.raw = append(rec.raw, r.URL.RawQuery)
		rec.uas = append(rec.uas, r.Header.Get("User-Agent"))
		rec.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, upstreamSVG)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testCfg(upstreamURL string) config.Config {
	cfg := config.Defaults()
	cfg.Badge.UpstreamURL = upstreamURL
	return cfg
}

func newTestApp(svc *BadgeService) *fiber.App {
	app := fiber.New()
	app.All("/api/neon-visitors", svc.HandleBadge)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func assertSVGHeaders(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store, max-age=0", resp.Header.Get("Cache-Control"))
}

func TestHandleBadge_Defaults(t *testing.T) {
	srv, rec := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL+"/badge"), srv.Client()))

	resp, body := get(t, app, "/api/neon-visitors")

	assertSVGHeaders(t, resp)
	assert.Contains(t, body, `width="360" height="100"`)
	assert.Equal(t, 2, strings.Count(body, "<image "))

	q, _, ua := rec.last()
	assert.Equal(t, "chiragvaze.chiragvaze", q.Get("page_id"))
	assert.Equal(t, "0b0f1a", q.Get("left_color"))
	assert.Equal(t, "4f46e5", q.Get("right_color"))
	assert.Equal(t, "Profile Views", q.Get("left_text"))
	assert.Equal(t, "neon-visitor-badge/1.0", ua)
}

func TestHandleBadge_ScaleSetsDimensions(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	tests := []struct {
		scale string
		w, h  int
	}{
		{"0.5", 180, 50},
		{"0.75", 270, 75},
		{"1.5", 540, 150},
		{"2", 720, 200},
		{"0.1", 180, 50},
		{"9", 720, 200},
		{"", 360, 100},
		{"abc", 360, 100},
	}
	for _, tc := range tests {
		t.Run("scale="+tc.scale, func(t *testing.T) {
			resp, body := get(t, app, "/api/neon-visitors?scale="+url.QueryEscape(tc.scale))
			assertSVGHeaders(t, resp)
			assert.Contains(t, body, fmt.Sprintf(`width="%d" height="%d"`, tc.w, tc.h))
		})
	}
}

func TestHandleBadge_Theme(t *testing.T) {
	srv, rec := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	for _, theme := range []string{"light", "LIGHT", "Light"} {
		_, body := get(t, app, "/api/neon-visitors?theme="+theme)
		assert.Contains(t, body, "#eef2ff", theme)
		q, _, _ := rec.last()
		assert.Equal(t, "e6f0ff", q.Get("left_color"), theme)
	}

	for _, target := range []string{"/api/neon-visitors", "/api/neon-visitors?theme=dark", "/api/neon-visitors?theme=DARK"} {
		_, body := get(t, app, target)
		assert.Contains(t, body, "#060b16", target)
		q, _, _ := rec.last()
		assert.Equal(t, "0b0f1a", q.Get("left_color"), target)
	}
}

func TestHandleBadge_GlowOff(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	for _, glow := range []string{"off", "OFF", "Off"} {
		_, body := get(t, app, "/api/neon-visitors?glow="+glow)
		assert.Equal(t, 1, strings.Count(body, "<image "), glow)
		assert.NotContains(t, body, `filter="url(#neonGlow)"`, glow)
	}

	_, body := get(t, app, "/api/neon-visitors?glow=maybe")
	assert.Equal(t, 2, strings.Count(body, "<image "))
	assert.Contains(t, body, `filter="url(#neonGlow)"`)
}

func TestHandleBadge_PageIDIsPercentEncoded(t *testing.T) {
	srv, rec := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	resp, _ := get(t, app, "/api/neon-visitors?page_id="+url.QueryEscape("john doe&co"))
	assertSVGHeaders(t, resp)

	q, raw, _ := rec.last()
	assert.True(t, strings.HasPrefix(raw, "page_id=john%20doe%26co&"), raw)
	assert.Equal(t, "john doe&co", q.Get("page_id"))
}

func TestHandleBadge_Upstream404RendersFallback(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusNotFound)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	resp, body := get(t, app, "/api/neon-visitors?scale=2")

	assertSVGHeaders(t, resp)
	assert.Contains(t, body, "Neon Visitors: Upstream fetch failed: 404 Not Found")
	assert.Contains(t, body, `width="360" height="100"`)
	assert.NotContains(t, body, "<image ")
}

func TestHandleBadge_ConnectionRefusedRendersFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	app := newTestApp(NewBadgeService(testCfg(base), &http.Client{}))
	resp, body := get(t, app, "/api/neon-visitors")

	assertSVGHeaders(t, resp)
	assert.Contains(t, body, "Neon Visitors: Upstream fetch failed:")
	assert.Contains(t, body, "connection refused")
	assert.NotContains(t, body, "page_id=")
	assert.NotContains(t, body, base)
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestHandleBadge_LongErrorIsTruncated(t *testing.T) {
	app := newTestApp(NewBadgeService(testCfg("http://badge.invalid/badge"), failingDoer{err: errors.New(strings.Repeat("z", 500))}))

	_, body := get(t, app, "/api/neon-visitors")

	msg := "Upstream fetch failed: " + strings.Repeat("z", 500)
	assert.Contains(t, body, "Neon Visitors: "+msg[:200]+"\n")
	assert.NotContains(t, body, msg[:201])
}

func TestHandleBadge_Deterministic(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	target := "/api/neon-visitors?page_id=octocat&theme=light&scale=1.3&glow=on"
	_, first := get(t, app, target)
	_, second := get(t, app, target)
	assert.Equal(t, first, second)
}

func TestHandleBadge_MethodAgnostic(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK)
	app := newTestApp(NewBadgeService(testCfg(srv.URL), srv.Client()))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/neon-visitors", nil), -1)
	require.NoError(t, err)
	assertSVGHeaders(t, resp)
}
