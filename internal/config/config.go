// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultAddr            = ":8080"
	DefaultDBPath          = "noticeboard.db"
	DefaultUploadDir       = "uploads"
	DefaultMailFrom        = "Noticeboard <noreply@noticeboard.local>"
	DefaultMailInternalTo  = "staff@noticeboard.local"
	DefaultDispatchTimeout = 30 * time.Second
	DefaultMaxUploadMB     = 10
	DefaultMutationsPerMin = 30
	DefaultSMTPPort        = "465"
	EnvProduction          = "production"
	envPrefix              = "NOTICEBOARD_"
)

// Config is the full set of runtime settings.
type Config struct {
	Addr      string
	DBPath    string
	UploadDir string
	Env       string

	// Mail provider selection: Resend when ResendKey is set, else SMTP when SMTPHost is set, else noop.
	ResendKey      string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPass       string
	MailFrom       string
	MailInternalTo string // Fixed primary recipient of every notification
	MailReplyTo    string

	DispatchTimeout time.Duration
	CORSOrigins     []string
	MaxUploadBytes  int64
	MutationsPerMin int

	LogLevel    slog.Level
	LogFormat   string // text or json
	SlowQuery   time.Duration
	SlowRequest time.Duration
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then builds a Config from the environment.
// A missing file is not an error.
// POST: Returns a validated Config
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
// PRE: getenv is non-nil
// POST: Returns a validated Config or the first invalid setting
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:           get("ADDR", DefaultAddr),
		DBPath:         get("DB_PATH", DefaultDBPath),
		UploadDir:      get("UPLOAD_DIR", DefaultUploadDir),
		Env:            get("ENV", "development"),
		ResendKey:      get("RESEND_KEY", ""),
		SMTPHost:       get("SMTP_HOST", ""),
		SMTPPort:       get("SMTP_PORT", DefaultSMTPPort),
		SMTPUser:       get("SMTP_USER", ""),
		SMTPPass:       get("SMTP_PASS", ""),
		MailFrom:       get("MAIL_FROM", DefaultMailFrom),
		MailInternalTo: get("MAIL_INTERNAL_TO", DefaultMailInternalTo),
		MailReplyTo:    get("MAIL_REPLY_TO", ""),
		LogFormat:      strings.ToLower(get("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.DispatchTimeout, err = parseDuration(get("DISPATCH_TIMEOUT", ""), DefaultDispatchTimeout); err != nil {
		return Config{}, fmt.Errorf("config: %sDISPATCH_TIMEOUT: %w", envPrefix, err)
	}
	if cfg.SlowQuery, err = parseMillis(get("SLOW_QUERY_MS", "")); err != nil {
		return Config{}, fmt.Errorf("config: %sSLOW_QUERY_MS: %w", envPrefix, err)
	}
	if cfg.SlowRequest, err = parseMillis(get("SLOW_REQUEST_MS", "")); err != nil {
		return Config{}, fmt.Errorf("config: %sSLOW_REQUEST_MS: %w", envPrefix, err)
	}
	mb, err := strconv.Atoi(get("MAX_UPLOAD_MB", strconv.Itoa(DefaultMaxUploadMB)))
	if err != nil || mb <= 0 {
		return Config{}, fmt.Errorf("config: %sMAX_UPLOAD_MB must be a positive integer", envPrefix)
	}
	cfg.MaxUploadBytes = int64(mb) << 20
	if cfg.MutationsPerMin, err = strconv.Atoi(get("MUTATIONS_PER_MINUTE", strconv.Itoa(DefaultMutationsPerMin))); err != nil || cfg.MutationsPerMin <= 0 {
		return Config{}, fmt.Errorf("config: %sMUTATIONS_PER_MINUTE must be a positive integer", envPrefix)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("config: %sLOG_LEVEL: %w", envPrefix, err)
	}
	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", "*"))

	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if _, err := mail.ParseAddress(c.MailFrom); err != nil {
		return fmt.Errorf("config: %sMAIL_FROM is not a valid address: %w", envPrefix, err)
	}
	if _, err := mail.ParseAddress(c.MailInternalTo); err != nil {
		return fmt.Errorf("config: %sMAIL_INTERNAL_TO is not a valid address: %w", envPrefix, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: %sLOG_FORMAT must be text or json", envPrefix)
	}
	if c.DispatchTimeout <= 0 {
		return fmt.Errorf("config: %sDISPATCH_TIMEOUT must be positive", envPrefix)
	}
	return nil
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// MailProvider names the sender chosen for this configuration: resend, smtp or noop.
func (c Config) MailProvider() string {
	switch {
	case c.ResendKey != "":
		return "resend"
	case c.SMTPHost != "":
		return "smtp"
	default:
		return "noop"
	}
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DSN returns the SQLite connection string with WAL and busy timeout enabled.
func (c Config) DSN() string {
	return c.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// parseDuration accepts Go durations ("45s") or bare seconds ("45").
func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

// parseMillis returns zero for unset, letting callers apply their own default.
func parseMillis(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return time.Duration(n) * time.Millisecond, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
