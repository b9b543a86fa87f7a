// Package security carries the outermost HTTP defenses: response
// headers, probe detection, and client IP resolution.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig lists the security headers set on every response.
type HeadersConfig struct {
	CSP                 string
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// HSTS applies only when the request arrived over TLS.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// APIHeadersConfig suits a JSON-only service: no scripts, no styles,
// nothing embeddable.
func APIHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                 "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}
}

type HeadersMiddleware struct {
	cfg HeadersConfig
}

func NewHeadersMiddleware(cfg HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{cfg: cfg}
}

func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Content-Security-Policy", h.cfg.CSP)
		hdr.Set("X-Frame-Options", h.cfg.XFrameOptions)
		hdr.Set("X-Content-Type-Options", h.cfg.XContentTypeOptions)
		hdr.Set("Referrer-Policy", h.cfg.ReferrerPolicy)
		hdr.Set("Permissions-Policy", h.cfg.PermissionsPolicy)
		hdr.Set("Cross-Origin-Opener-Policy", h.cfg.CrossOriginOpener)
		hdr.Set("Cross-Origin-Resource-Policy", h.cfg.CrossOriginResource)

		if r.TLS != nil && h.cfg.HSTSMaxAge > 0 {
			hsts := fmt.Sprintf("max-age=%d", h.cfg.HSTSMaxAge)
			if h.cfg.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			hdr.Set("Strict-Transport-Security", hsts)
		}

		next.ServeHTTP(w, r)
	})
}
