// Package middleware holds the HTTP boundary guards: authentication,
// origin and csrf checks, client IP propagation and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/notedrop/notedrop-api/internal/httpx"
)

// writeProblem emits an RFC 7807 problem+json response from plain
// middleware, outside huma's error formatting.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	p := &httpx.Problem{
		Type:      "urn:problem:request/" + code,
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Code:      code,
		RequestID: chimw.GetReqID(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
