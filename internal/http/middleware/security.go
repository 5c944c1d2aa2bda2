package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/straye-as/project-tracker/internal/config"
)

// swaggerCSP allows the inline scripts and styles of the bundled Swagger UI
const swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

// SecurityHeaders returns a middleware that adds security headers to responses.
// Paths under relaxedPrefixes get a Content-Security-Policy that Swagger UI can run with.
func SecurityHeaders(cfg *config.SecurityConfig, relaxedPrefixes ...string) func(http.Handler) http.Handler {
	headers := securityHeaderSet(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				h.Set(name, value)
			}

			if cfg.ContentSecurityPolicy != "" {
				for _, prefix := range relaxedPrefixes {
					if strings.HasPrefix(r.URL.Path, prefix) {
						h.Set("Content-Security-Policy", swaggerCSP)
						break
					}
				}
			}

			// Remove headers that leak server information
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

// securityHeaderSet resolves the configured headers once; empty values are left out
func securityHeaderSet(cfg *config.SecurityConfig) map[string]string {
	headers := map[string]string{
		"X-Frame-Options":         cfg.FrameOptions,
		"X-XSS-Protection":        cfg.XSSProtection,
		"Content-Security-Policy": cfg.ContentSecurityPolicy,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Permissions-Policy":      cfg.PermissionsPolicy,
	}
	if cfg.ContentTypeNosniff {
		headers["X-Content-Type-Options"] = "nosniff"
	}
	if cfg.EnableHSTS {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		headers["Strict-Transport-Security"] = hsts
	}

	for name, value := range headers {
		if value == "" {
			delete(headers, name)
		}
	}
	return headers
}
