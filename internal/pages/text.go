package pages

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/requestinfo"
)

// LLMs serves the plain-text summary for AI crawlers.
func (h *Handler) LLMs(w http.ResponseWriter, r *http.Request) {
	doc := contentctx.FromContext(r.Context()).Content()

	if info := requestinfo.FromContext(r.Context()); info != nil {
		zap.L().Debug("llms.txt served",
			zap.String("tenant", contentctx.Key(r).String()),
			zap.Bool("bot", info.UA.IsBot),
			zap.String("browser", info.UA.Browser))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = io.WriteString(w, content.LLMsText(doc))
}

// Robots serves robots.txt.  Preview endpoints are never crawled.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "User-agent: *\nAllow: /\nDisallow: /_preview/\n")
}

const notFoundHTML = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Page not found</title></head>
<body><main><h1>Page not found</h1><p>The page you are looking for does not exist.</p>
<p><a href="/">Back to the home page</a></p></main></body></html>
`

// NotFound renders the not-found page.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, notFoundHTML)
}
