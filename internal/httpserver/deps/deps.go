package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/reel/internal/index"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
	"github.com/MrSnakeDoc/reel/internal/sources/sections"
	"github.com/MrSnakeDoc/reel/internal/supabase"
	"github.com/MrSnakeDoc/reel/internal/tmdb"
	"github.com/MrSnakeDoc/reel/internal/version"
)

// Pinger is anything readyz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed to reach the infra endpoints
	AllowedCIDRS []string // IPs allowed to access healthz/readyz and reload endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // browser origins allowed to call the API with credentials

	CookieSecure bool          // mark the session cookie Secure
	SessionTTL   time.Duration // session cookie Max-Age

	AuthBurst        int // login/register attempts per client IP
	AuthRefillPerMin int

	TMDB            *tmdb.Client
	Supabase        *supabase.Provider
	Sessions        *session.Manager
	Index           *index.MemoryIndex // live sessions, for readyz counters
	SessionStore    Pinger             // nil when sessions are memory only
	Catalog         *sections.Catalog  // browse rows
	SectionsTrigger chan struct{}      // manual sections reload, nil disables the endpoint
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
