// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Banner is the body of GET /.
const Banner = "EventHub Backend is running"

// Routes returns a chi.Router with the root banner mounted.
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", Index)
	return r
}

// Index answers with a plain-text banner. It touches no backend.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(Banner))
}
