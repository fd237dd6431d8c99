package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/beams-api/internal/domain/entity"
)

func TestCreateShortLink_ValidationErrors(t *testing.T) {
	handler := &ShortLinkHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{name: "missing full_url", body: map[string]string{"title": "Oceans"}},
		{name: "full_url is not a url", body: map[string]string{"full_url": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/short-links", tt.body)
			handler.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp["error"], "Invalid request data")
		})
	}
}

func TestOGPageTemplate(t *testing.T) {
	link := &entity.ShortLink{
		ShortPath:   "aB3xK9qZ",
		FullURL:     "https://beams.example.com/beams-today/42",
		Title:       "Oceans & Tides",
		Description: "Why the sea \"breathes\" twice a day",
		ImageURL:    "https://cdn.example.com/oceans.jpg",
	}

	var buf bytes.Buffer
	require.NoError(t, ogPageTemplate.Execute(&buf, link))
	page := buf.String()

	assert.Contains(t, page, `<meta property="og:title" content="Oceans &amp; Tides">`)
	assert.Contains(t, page, `og:image`)
	assert.Contains(t, page, `<meta name="twitter:title" content="Oceans &amp; Tides">`)
	assert.Contains(t, page, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, page, `twitter:image`)
	// Script redirect for browsers, meta refresh fallback for no-JS
	assert.Contains(t, page, `window.location.replace("`+link.FullURL+`")`)
	assert.Contains(t, page, `http-equiv="refresh"`)
	assert.Contains(t, page, link.FullURL)
	// html/template escapes the quotes in the description
	assert.NotContains(t, page, `"breathes"`)
}

func TestOGPageTemplate_NoImage(t *testing.T) {
	link := &entity.ShortLink{
		ShortPath: "aB3xK9qZ",
		FullURL:   "https://beams.example.com/theatre/7",
		Title:     "Theatre",
	}

	var buf bytes.Buffer
	require.NoError(t, ogPageTemplate.Execute(&buf, link))
	page := buf.String()

	assert.NotContains(t, page, "og:image")
	assert.NotContains(t, page, "twitter:image")
	assert.Contains(t, page, `<meta name="twitter:card" content="summary">`)
}
