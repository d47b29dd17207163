package http

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

var (
	sitemapPaths      = []string{"/", "/contact", "/terms", "/privacy", "/about"}
	robotsPrivatePath = []string{"/admin", "/user-panel", "/auth", "/settings"}
)

type SEOHandler struct {
	appConfigUseCase interfaces.AppConfigUseCase
	logger           *zap.Logger
	now              func() time.Time
}

func NewSEOHandler(appConfigUseCase interfaces.AppConfigUseCase, logger *zap.Logger) *SEOHandler {
	return &SEOHandler{
		appConfigUseCase: appConfigUseCase,
		logger:           logger,
		now:              time.Now,
	}
}

// Robots handles GET /robots.txt. Crawling is blocked entirely while the site
// is in maintenance or marked noindex.
func (h *SEOHandler) Robots(c echo.Context) error {
	cfg := h.appConfigUseCase.GetOrDefault(c.Request().Context())
	return c.String(http.StatusOK, renderRobots(cfg))
}

func renderRobots(cfg *entity.AppConfig) string {
	siteURL := strings.TrimRight(cfg.SiteURL, "/")

	var b strings.Builder
	b.WriteString("User-Agent: *\n")
	if cfg.MaintenanceMode || cfg.NoIndex {
		b.WriteString("Disallow: /\n")
	} else {
		b.WriteString("Allow: /\n")
		for _, path := range robotsPrivatePath {
			b.WriteString("Disallow: " + path + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString("Host: " + siteURL + "\n")
	b.WriteString("Sitemap: " + siteURL + "/sitemap.xml\n")
	return b.String()
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /sitemap.xml
func (h *SEOHandler) Sitemap(c echo.Context) error {
	cfg := h.appConfigUseCase.GetOrDefault(c.Request().Context())
	siteURL := strings.TrimRight(cfg.SiteURL, "/")
	lastMod := h.now().UTC().Format(time.RFC3339)

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range sitemapPaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: siteURL + path, LastMod: lastMod})
	}

	return c.XML(http.StatusOK, set)
}

// Maintenance handles GET /maintenance
func (h *SEOHandler) Maintenance(c echo.Context) error {
	cfg := h.appConfigUseCase.GetOrDefault(c.Request().Context())
	return c.HTML(http.StatusOK, middleware.MaintenancePage(cfg.SiteDisplayName, cfg.DefaultLocale))
}
