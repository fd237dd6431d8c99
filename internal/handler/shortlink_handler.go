package handler

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/beams-api/internal/handler/dto"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

// ogPageTemplate renders a minimal HTML page carrying Open Graph and
// Twitter card metadata. Crawlers read the meta tags; browsers follow
// the script redirect, with meta refresh as a no-JS fallback.
var ogPageTemplate = template.Must(template.New("og").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
{{if .ImageURL}}<meta property="og:image" content="{{.ImageURL}}">{{end}}
<meta property="og:url" content="{{.FullURL}}">
<meta name="twitter:card" content="{{if .ImageURL}}summary_large_image{{else}}summary{{end}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
{{if .ImageURL}}<meta name="twitter:image" content="{{.ImageURL}}">{{end}}
<noscript><meta http-equiv="refresh" content="0;url={{.FullURL}}"></noscript>
<script>window.location.replace({{.FullURL}});</script>
</head>
<body>
<p>Redirecting to <a href="{{.FullURL}}">{{.FullURL}}</a>...</p>
</body>
</html>
`))

// ShortLinkHandler serves short link creation and resolution.
type ShortLinkHandler struct {
	shortLinkService *service.ShortLinkService
	notFoundURL      string
}

// NewShortLinkHandler creates a new short link handler. notFoundURL is
// where unknown short paths are redirected.
func NewShortLinkHandler(shortLinkService *service.ShortLinkService, notFoundURL string) *ShortLinkHandler {
	return &ShortLinkHandler{
		shortLinkService: shortLinkService,
		notFoundURL:      notFoundURL,
	}
}

// CreateShortLinkRequest describes a link to shorten.
type CreateShortLinkRequest struct {
	FullURL     string `json:"full_url" binding:"required,url"`
	Title       string `json:"title" binding:"omitempty,max=255"`
	Description string `json:"description" binding:"omitempty,max=500"`
	ImageURL    string `json:"image_url" binding:"omitempty,max=255"`
}

// Create mints a new short link.
func (h *ShortLinkHandler) Create(c *gin.Context) {
	var req CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	link, err := h.shortLinkService.Create(service.ShortLinkInput{
		FullURL:     req.FullURL,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewShortLinkResponse(link, h.shortLinkService.ShortURL(link.ShortPath)))
}

// List returns existing short links with click counters.
func (h *ShortLinkHandler) List(c *gin.Context) {
	page, pageSize := paginationParams(c, 20, 100)

	links, total, err := h.shortLinkService.List(page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]*dto.ShortLinkResponse, 0, len(links))
	for i := range links {
		responses = append(responses, dto.NewShortLinkResponse(&links[i], h.shortLinkService.ShortURL(links[i].ShortPath)))
	}

	c.JSON(http.StatusOK, gin.H{
		"links":    responses,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// Resolve serves the public short link page: an HTML document with
// Open Graph meta tags that immediately redirects to the full URL.
// Every hit increments the click counter. Unknown paths redirect to
// the configured fallback URL.
func (h *ShortLinkHandler) Resolve(c *gin.Context) {
	shortPath := c.Param("path")

	link, err := h.shortLinkService.Resolve(shortPath)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.Redirect(http.StatusFound, h.notFoundURL)
			return
		}
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := ogPageTemplate.Execute(c.Writer, link); err != nil {
		log.Printf("[ShortLinkHandler] Failed to render OG page for %q: %v", shortPath, err)
	}
}

func (h *ShortLinkHandler) handleError(c *gin.Context, err error) {
	log.Printf("[ShortLinkHandler] Error: %v", err)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Short path collision, try again", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
