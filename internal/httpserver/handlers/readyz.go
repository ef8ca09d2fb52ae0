package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

const readyzProbeTimeout = 2 * time.Second

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready          bool                       `json:"ready"`
	Components     map[string]componentStatus `json:"components"`
	Sessions       int                        `json:"sessions"`
	SignedIn       int                        `json:"signed_in"`
	Sections       int                        `json:"sections"`
	SectionsReload string                     `json:"sections_reload,omitempty"`
}

// Readyz reports whether the session store answers and the data service
// handle can be built. Either failing yields 503.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"session_store": checkSessionStore(r.Context(), d),
			"supabase":      checkSupabase(d),
		}

		resp := readyzResponse{Ready: true, Components: components}
		for name, c := range components {
			if !c.OK {
				resp.Ready = false
				d.Logger.Warn("readiness check failed",
					logger.String("component", name),
					logger.String("error", c.Error))
			}
		}
		if d.Index != nil {
			resp.Sessions = d.Index.Count()
			resp.SignedIn = d.Index.SignedIn()
		}
		if d.Catalog != nil {
			resp.Sections = len(d.Catalog.All())
			if last := d.Catalog.GetLastReload(); !last.IsZero() {
				resp.SectionsReload = last.UTC().Format(time.RFC3339)
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, r, status, resp)
	}
}

func checkSessionStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.SessionStore == nil {
		return componentStatus{OK: true}
	}
	ctx, cancel := context.WithTimeout(ctx, readyzProbeTimeout)
	defer cancel()
	if err := d.SessionStore.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkSupabase(d deps.Deps) componentStatus {
	if d.Supabase == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}
	if _, err := d.Supabase.Handle(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
