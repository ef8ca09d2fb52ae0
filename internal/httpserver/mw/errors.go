package mw

import (
	"net/http"

	"github.com/go-chi/render"
)

// writeError renders the same {"error": "..."} body the handlers use.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
