package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"

	"github.com/portfoliocms/backend/internal/models"
)

// ClientInfo extracts the caller address and user agent for audit fields
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := ParseClientInfo(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientInfoKey, info)))
	})
}

// ParseClientInfo builds the client info of a request
func ParseClientInfo(r *http.Request) models.ClientInfo {
	raw := r.UserAgent()
	info := models.ClientInfo{
		IPAddress: clientIP(r),
		UserAgent: raw,
	}
	if raw == "" {
		return info
	}

	ua := useragent.Parse(raw)
	info.Browser = ua.Name
	info.OS = ua.OS
	switch {
	case ua.Bot:
		info.Device = "bot"
	case ua.Tablet:
		info.Device = "tablet"
	case ua.Mobile:
		info.Device = "mobile"
	case ua.Desktop:
		info.Device = "desktop"
	}
	return info
}

// GetClientInfo retrieves the client info from context, parsing the request when absent
func GetClientInfo(r *http.Request) models.ClientInfo {
	if info, ok := r.Context().Value(clientInfoKey).(models.ClientInfo); ok {
		return info
	}
	return ParseClientInfo(r)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket address
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
