// Package httpx shapes the API's responses: plain JSON bodies for success
// payloads and RFC7807 problem documents for errors.
package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// problemTypeBase prefixes the type URI on every problem document.
const problemTypeBase = "https://milletflow.dev/problems/"

// ProblemDetail is the RFC7807 body returned for every API error.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response. The type URI is derived
// from the title, e.g. "Insufficient Stock" maps to .../insufficient-stock.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Type:   problemTypeBase + problemSlug(title),
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func problemSlug(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
