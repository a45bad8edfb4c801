package middleware

import "net/http"

type CORSMiddleware struct {
	allowOrigin string
}

// NewCORSMiddleware allows every origin in development and none cross-site otherwise.
func NewCORSMiddleware(dev bool) *CORSMiddleware {
	origin := ""
	if dev {
		origin = "*"
	}
	return &CORSMiddleware{allowOrigin: origin}
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if m.allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", m.allowOrigin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}
