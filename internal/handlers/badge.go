package handlers

import (
	"github.com/gofiber/fiber/v2"

	"neonvisitors/internal/badge"
	"neonvisitors/internal/config"
	"neonvisitors/internal/domain"
	"neonvisitors/internal/infra/logging"
)

const (
	contentTypeSVG = "image/svg+xml"
	cacheControl   = "no-store, max-age=0"
)

// BadgeService bundles configuration and the composer for the badge endpoint.
type BadgeService struct {
	Config   *config.Config
	Composer *badge.Composer
}

// NewBadgeService creates a BadgeService. A nil client uses http.DefaultClient.
func NewBadgeService(cfg config.Config, client badge.HTTPDoer) *BadgeService {
	return &BadgeService{
		Config:   &cfg,
		Composer: badge.NewComposer(cfg.Badge, client),
	}
}

// HandleBadge composes the neon badge. It always answers 200 with an SVG body:
// composition failures are rendered into the fallback badge instead of an
// error status, so markdown image embeds never show a broken image.
func (svc *BadgeService) HandleBadge(c *fiber.Ctx) error {
	raw := domain.RawQuery{
		PageID: c.Query("page_id"),
		Theme:  c.Query("theme"),
		Scale:  c.Query("scale"),
		Glow:   c.Query("glow"),
	}

	svg, params, err := svc.Composer.Compose(c.UserContext(), raw)
	if err != nil {
		logging.Warn("Badge composition failed",
			"kind", string(domain.KindOf(err)),
			"page_id", params.PageID,
			"error", err,
			"request_id", requestID(c),
		)
		svg = badge.RenderFallback(err)
	} else {
		logging.Debug("Badge composed",
			"page_id", params.PageID,
			"theme", string(params.Theme),
			"scale", params.Scale,
			"glow", params.GlowOn,
			"request_id", requestID(c),
		)
	}

	return SendSVG(c, svg)
}

// SendSVG writes body as an uncacheable 200 image/svg+xml response.
func SendSVG(c *fiber.Ctx, body []byte) error {
	c.Set(fiber.HeaderContentType, contentTypeSVG)
	c.Set(fiber.HeaderCacheControl, cacheControl)
	return c.Status(fiber.StatusOK).Send(body)
}

func requestID(c *fiber.Ctx) string {
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
