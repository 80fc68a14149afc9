package badge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"neonvisitors/internal/config"
	"neonvisitors/internal/domain"
)

// HTTPDoer sends a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Upstream fetches the base visitor badge from the third-party service.
type Upstream struct {
	BaseURL      string
	UserAgent    string
	LeftText     string
	RightColor   string
	Timeout      time.Duration
	MaxBodyBytes int64
	Client       HTTPDoer
}

// NewUpstream builds an Upstream from cfg. A nil client means http.DefaultClient.
func NewUpstream(cfg config.BadgeConfig, client HTTPDoer) *Upstream {
	if client == nil {
		client = http.DefaultClient
	}
	return &Upstream{
		BaseURL:      cfg.UpstreamURL,
		UserAgent:    cfg.UserAgent,
		LeftText:     cfg.LeftText,
		RightColor:   cfg.RightColor,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Client:       client,
	}
}

// URL returns the upstream request URL for p. Parameter order is fixed.
func (u *Upstream) URL(p domain.Params) string {
	sep := "?"
	if strings.Contains(u.BaseURL, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(u.BaseURL)
	b.WriteString(sep)
	b.WriteString("page_id=" + escapeComponent(p.PageID))
	b.WriteString("&left_color=" + paletteFor(p.Theme).LeftColor)
	b.WriteString("&right_color=" + escapeComponent(u.RightColor))
	b.WriteString("&left_text=" + escapeComponent(u.LeftText))
	return b.String()
}

// Fetch performs one GET against the badge service and returns the body.
// Non-2xx responses and transport failures are returned as *domain.UpstreamError.
func (u *Upstream) Fetch(ctx context.Context, p domain.Params) ([]byte, error) {
	if u.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL(p), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", u.UserAgent)

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	limit := u.MaxBodyBytes
	if limit <= 0 {
		limit = 2 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	if int64(len(body)) > limit {
		return nil, &domain.UpstreamError{Err: fmt.Errorf("response body exceeds %d bytes", limit)}
	}
	return body, nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// escapeComponent percent-encodes s like JavaScript's encodeURIComponent,
// so a space becomes %20 rather than '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
