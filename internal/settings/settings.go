// Package settings assembles the process configuration from layered sources:
// base defaults, an environment profile, an optional local YAML override and
// finally FORMSITE_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// EnvVar selects the environment profile.
	EnvVar = "FORMSITE_ENV"
	// LocalSettingsVar points at the optional local override file.
	LocalSettingsVar = "FORMSITE_LOCAL_SETTINGS"
	// DefaultLocalSettings is read when LocalSettingsVar is unset.
	DefaultLocalSettings = "settings.local.yaml"

	envPrefix = "FORMSITE_"
)

// Environment profiles.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// DevelopmentSecretKey signs CSRF tokens outside production. Production
// refuses to start with it.
const DevelopmentSecretKey = "formsite-development-secret-key"

var (
	// ErrUnknownEnvironment is returned for a FORMSITE_ENV without a profile.
	ErrUnknownEnvironment = errors.New("settings: unknown environment")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("settings: invalid configuration")
)

// Settings is the decoded configuration.
type Settings struct {
	Env               string   `mapstructure:"env"`
	Debug             bool     `mapstructure:"debug"`
	SecretKey         string   `mapstructure:"secret_key"`
	Addr              string   `mapstructure:"addr"`
	AllowedHosts      []string `mapstructure:"allowed_hosts"`
	StaticURL         string   `mapstructure:"static_url"`
	StaticRoot        string   `mapstructure:"static_root"`
	MediaURL          string   `mapstructure:"media_url"`
	MediaRoot         string   `mapstructure:"media_root"`
	EmailBackend      string   `mapstructure:"email_backend"`
	EmailHost         string   `mapstructure:"email_host"`
	EmailPort         int      `mapstructure:"email_port"`
	EmailHostUser     string   `mapstructure:"email_host_user"`
	EmailHostPassword string   `mapstructure:"email_host_password"`
	DefaultFromEmail  string   `mapstructure:"default_from_email"`
	Admins            []string `mapstructure:"admins"`
	LogLevel          string   `mapstructure:"log_level"`
	LogFormat         string   `mapstructure:"log_format"`
	StoreBackend      string   `mapstructure:"store_backend"`
	RedisAddr         string   `mapstructure:"redis_addr"`
	Theme             string   `mapstructure:"theme"`
	ThemeVariant      string   `mapstructure:"theme_variant"`
}

var (
	emailBackends = []string{"console", "locmem", "smtp", "dummy"}
	storeBackends = []string{"memory", "redis"}
	secretKeys    = []string{"secret_key", "email_host_password"}
)

func base() map[string]any {
	return map[string]any{
		"debug":               false,
		"secret_key":          "",
		"addr":                ":8000",
		"allowed_hosts":       []string{},
		"static_url":          "/static/",
		"static_root":         "",
		"media_url":           "/media/",
		"media_root":          "",
		"email_backend":       "console",
		"email_host":          "localhost",
		"email_port":          25,
		"email_host_user":     "",
		"email_host_password": "",
		"default_from_email":  "webmaster@localhost",
		"admins":              []string{},
		"log_level":           "info",
		"log_format":          "text",
		"store_backend":       "memory",
		"redis_addr":          "localhost:6379",
		"theme":               "formsite",
		"theme_variant":       "",
	}
}

var profiles = map[string]map[string]any{
	Development: {
		"debug":         true,
		"secret_key":    DevelopmentSecretKey,
		"allowed_hosts": []string{"localhost", "127.0.0.1", "[::1]"},
		"log_level":     "debug",
	},
	Production: {
		"email_backend": "smtp",
		"log_format":    "json",
	},
	Test: {
		"secret_key":    "formsite-test-secret-key",
		"email_backend": "locmem",
		"store_backend": "memory",
		"log_level":     "error",
	},
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	lookupEnv func(string) (string, bool)
	readFile  func(string) ([]byte, error)
	env       string
	localPath string
}

// WithLookupEnv replaces os.LookupEnv, mostly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		if fn != nil {
			l.lookupEnv = fn
		}
	}
}

// WithFS reads the local override file from fsys instead of the OS.
func WithFS(fsys fs.FS) Option {
	return func(l *loader) {
		if fsys != nil {
			l.readFile = func(name string) ([]byte, error) {
				return fs.ReadFile(fsys, name)
			}
		}
	}
}

// WithEnvironment forces the profile, ignoring FORMSITE_ENV.
func WithEnvironment(env string) Option {
	return func(l *loader) {
		l.env = strings.TrimSpace(env)
	}
}

// WithLocalFile forces the override path, ignoring FORMSITE_LOCAL_SETTINGS.
func WithLocalFile(path string) Option {
	return func(l *loader) {
		l.localPath = strings.TrimSpace(path)
	}
}

// Load merges every layer, decodes the result and validates it.
func Load(options ...Option) (Settings, error) {
	l := &loader{
		lookupEnv: os.LookupEnv,
		readFile:  os.ReadFile,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}

	env := l.env
	if env == "" {
		env, _ = l.lookupEnv(EnvVar)
	}
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		env = Development
	}
	profile, ok := profiles[env]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownEnvironment, env)
	}

	merged := base()
	merge(merged, profile)

	local, err := l.local()
	if err != nil {
		return Settings{}, err
	}
	merge(merged, local)
	merge(merged, l.environ(merged))
	merged["env"] = env

	var out Settings
	if err := decode(merged, &out); err != nil {
		return Settings{}, err
	}
	if err := out.Validate(); err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (l *loader) local() (map[string]any, error) {
	path := l.localPath
	if path == "" {
		if value, ok := l.lookupEnv(LocalSettingsVar); ok {
			path = strings.TrimSpace(value)
		}
	}
	if path == "" {
		path = DefaultLocalSettings
	}

	data, err := l.readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return out, nil
}

func (l *loader) environ(known map[string]any) map[string]any {
	out := make(map[string]any)
	for key := range known {
		if value, ok := l.lookupEnv(envPrefix + strings.ToUpper(key)); ok {
			out[key] = value
		}
	}
	return out
}

func merge(dst, src map[string]any) {
	for key, value := range src {
		dst[strings.ToLower(strings.TrimSpace(key))] = value
	}
}

func decode(input map[string]any, out *Settings) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("settings: build decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("settings: decode: %w", err)
	}
	out.AllowedHosts = trimAll(out.AllowedHosts)
	out.Admins = trimAll(out.Admins)
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.SecretKey) == "" {
		problems = append(problems, "secret_key is required")
	}
	if s.Env == Production {
		if s.SecretKey == DevelopmentSecretKey {
			problems = append(problems, "secret_key must not be the development key")
		}
		if s.Debug {
			problems = append(problems, "debug must be off")
		}
	}
	if !slices.Contains(emailBackends, s.EmailBackend) {
		problems = append(problems, fmt.Sprintf("email_backend %q is not one of %s", s.EmailBackend, strings.Join(emailBackends, ", ")))
	}
	if !slices.Contains(storeBackends, s.StoreBackend) {
		problems = append(problems, fmt.Sprintf("store_backend %q is not one of %s", s.StoreBackend, strings.Join(storeBackends, ", ")))
	}
	if s.EmailBackend == "smtp" && strings.TrimSpace(s.EmailHost) == "" {
		problems = append(problems, "email_host is required for the smtp backend")
	}
	if s.StoreBackend == "redis" && strings.TrimSpace(s.RedisAddr) == "" {
		problems = append(problems, "redis_addr is required for the redis store")
	}
	if static, media := urlPath(s.StaticURL), urlPath(s.MediaURL); static != "" && media != "" &&
		(strings.HasPrefix(static, media) || strings.HasPrefix(media, static)) {
		problems = append(problems, fmt.Sprintf("static_url %q and media_url %q must not overlap", s.StaticURL, s.MediaURL))
	}
	if strings.TrimSpace(s.Theme) == "" {
		problems = append(problems, "theme is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// HostAllowed reports whether host (with or without a port) matches
// AllowedHosts. A leading dot matches subdomains, "*" matches everything and
// an empty list allows everything while Debug is on.
func (s Settings) HostAllowed(host string) bool {
	host = strings.ToLower(stripPort(host))
	if len(s.AllowedHosts) == 0 {
		return s.Debug
	}
	for _, pattern := range s.AllowedHosts {
		pattern = strings.ToLower(pattern)
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "."):
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
		case host == pattern:
			return true
		}
	}
	return false
}

// urlPath returns a site-relative URL with a trailing slash, or "" for
// absolute and empty URLs.
func urlPath(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") {
		return ""
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end >= 0 {
			return host[:end+1]
		}
		return host
	}
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return host[:idx]
	}
	return host
}

// Masked returns every setting as a sorted list of key/value pairs with
// secrets replaced by asterisks.
func (s Settings) Masked() []KeyValue {
	var raw map[string]any
	if err := mapstructure.Decode(s, &raw); err != nil {
		return nil
	}
	out := make([]KeyValue, 0, len(raw))
	for key, value := range raw {
		if slices.Contains(secretKeys, key) {
			if text, _ := value.(string); text != "" {
				value = "********"
			}
		}
		out = append(out, KeyValue{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeyValue is a single rendered setting.
type KeyValue struct {
	Key   string
	Value any
}
