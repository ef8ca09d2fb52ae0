package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Bookmark table backends
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// TMDB
	TMDBToken     string  // bearer token for the TMDB v3 API
	TMDBBaseURL   string  // ex: https://api.themoviedb.org/3
	TMDBRateLimit float64 // requests per second, 0 = unlimited
	TMDBBurst     int

	// Supabase (validated lazily by the handle, not here)
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string // optional, enables local token verification

	BookmarkBackend string // "supabase" | "sqlite"
	SQLitePath      string // used when BookmarkBackend=sqlite

	SectionsFile           string        // optional YAML browse rows, empty = built-in rows
	SectionsReloadInterval time.Duration // 0 = manual reload only

	// Sessions
	SessionTTL      time.Duration // redis record lifetime (default: 7d)
	SessionIdle     time.Duration // evict from memory after this idle time
	JanitorInterval time.Duration
	CookieSecure    bool

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	CORSOrigins  []string // allowed browser origins, empty = same-origin only
	AllowedHosts []string // optional, restrict access to specific Host headers (supports *.domain.ext)
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	AuthBurst        int // login/register attempts per client before throttling
	AuthRefillPerMin int
}

func Load() *Config {
	loadDotEnv(getenv("REEL_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("REEL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("REEL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("REEL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("REEL_PRETTY_LOG", true),

		// TMDB
		TMDBToken:     requireEnv("TMDB_API_TOKEN"),
		TMDBBaseURL:   getenv("TMDB_API_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBRateLimit: getenvFloat("TMDB_RATE_LIMIT", 20),
		TMDBBurst:     getenvInt("TMDB_RATE_BURST", 10),

		// Supabase
		SupabaseURL:       getenv("SUPABASE_URL", ""),
		SupabaseKey:       getenv("SUPABASE_KEY", ""),
		SupabaseJWTSecret: getenv("SUPABASE_JWT_SECRET", ""),

		BookmarkBackend: strings.ToLower(getenv("REEL_BOOKMARK_BACKEND", BackendSupabase)),
		SQLitePath:      getenv("REEL_SQLITE_PATH", "reel.db"),

		SectionsFile:           getenv("REEL_SECTIONS_FILE", ""),
		SectionsReloadInterval: mustDuration("REEL_SECTIONS_RELOAD_INTERVAL", 0),

		// Sessions
		SessionTTL:      mustDuration("REEL_SESSION_TTL", 7*24*time.Hour),
		SessionIdle:     mustDuration("REEL_SESSION_IDLE", 30*time.Minute),
		JanitorInterval: mustDuration("REEL_JANITOR_INTERVAL", 5*time.Minute),
		CookieSecure:    mustBool("REEL_COOKIE_SECURE", true),

		// Redis settings
		RedisAddr:             requireEnv("REEL_REDIS_ADDR"),
		RedisUser:             getenv("REEL_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("REEL_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("REEL_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("REEL_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("REEL_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("REEL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("REEL_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("REEL_TRUST_PROXY", true),

		AuthBurst:        getenvInt("REEL_AUTH_BURST", 5),
		AuthRefillPerMin: getenvInt("REEL_AUTH_REFILL_PER_MIN", 10),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: REEL_REDIS_PASSWORD is required when REEL_REDIS_PASSWORD_REQUIRED=true")
	}

	switch cfg.BookmarkBackend {
	case BackendSupabase, BackendSQLite:
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid REEL_BOOKMARK_BACKEND %q (want %s or %s)",
			cfg.BookmarkBackend, BackendSupabase, BackendSQLite))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() Config {
	cp := *c
	cp.RedisPassword = redact(c.RedisPassword)
	if c.RedisUser != "" {
		cp.RedisUser = redact(c.RedisUser)
	}
	cp.TMDBToken = redact(c.TMDBToken)
	cp.SupabaseKey = redact(c.SupabaseKey)
	cp.SupabaseJWTSecret = redact(c.SupabaseJWTSecret)
	return cp
}

func redact(v string) string {
	if v == "" {
		return ""
	}
	return "***REDACTED***"
}

// loadDotEnv reads a .env file when one exists. Variables already set in
// the process environment win.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Cannot read env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := parseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseDuration accepts Go durations plus a whole-day suffix ("7d").
func parseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day duration %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
