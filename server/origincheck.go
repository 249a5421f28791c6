package server

import (
	"net/http"
)

// originCheck rejects any request whose Origin header does not match the
// one allowed for its path. Everything here is loopback-only, so the
// usual allowed value is the empty string: a plain browser navigation.
type originChecker struct {
	handler http.Handler
	allowed map[string]string
}

const (
	originHeader      string = "Origin"
	frameOriginHeader string = "X-Frame-Options"
)

func (o *originChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get(originHeader)
	path := r.URL.Path

	if o.allowed[path] != origin {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set(frameOriginHeader, "DENY")
	o.handler.ServeHTTP(w, r)
}

func originCheck(allowed map[string]string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return &originChecker{
			allowed: allowed,
			handler: h,
		}
	}
}
