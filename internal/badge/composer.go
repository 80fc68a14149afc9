package badge

import (
	"context"

	"neonvisitors/internal/config"
	"neonvisitors/internal/domain"
)

// Composer fetches the upstream badge and renders the neon wrapper around it.
// It holds no per-request state and is safe for concurrent use.
type Composer struct {
	Upstream      *Upstream
	DefaultPageID string
}

// NewComposer wires a Composer from cfg. client may be nil.
func NewComposer(cfg config.BadgeConfig, client HTTPDoer) *Composer {
	return &Composer{
		Upstream:      NewUpstream(cfg, client),
		DefaultPageID: cfg.DefaultPageID,
	}
}

// Compose resolves raw, fetches the upstream badge and renders it. Callers
// decide how to present the error; see RenderFallback.
func (c *Composer) Compose(ctx context.Context, raw domain.RawQuery) ([]byte, domain.Params, error) {
	p := domain.Resolve(raw, c.DefaultPageID)

	body, err := c.Upstream.Fetch(ctx, p)
	if err != nil {
		return nil, p, err
	}

	svg, err := Render(p, body)
	if err != nil {
		return nil, p, err
	}
	return svg, p, nil
}
