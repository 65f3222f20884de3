package settings

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func envMap(values map[string]string) Option {
	return WithLookupEnv(func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	})
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	got, err := Load(envMap(nil), WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Settings{
		Env:              Development,
		Debug:            true,
		SecretKey:        DevelopmentSecretKey,
		Addr:             ":8000",
		AllowedHosts:     []string{"localhost", "127.0.0.1", "[::1]"},
		StaticURL:        "/static/",
		MediaURL:         "/media/",
		EmailBackend:     "console",
		EmailHost:        "localhost",
		EmailPort:        25,
		DefaultFromEmail: "webmaster@localhost",
		Admins:           []string{},
		LogLevel:         "debug",
		LogFormat:        "text",
		StoreBackend:     "memory",
		RedisAddr:        "localhost:6379",
		Theme:            "formsite",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLayerPrecedence(t *testing.T) {
	files := fstest.MapFS{
		"custom.yaml": {Data: []byte(strings.Join([]string{
			"addr: \":9000\"",
			"email_port: 2525",
			"admins:",
			"  - ops@example.com",
			"log_level: warn",
		}, "\n"))},
	}
	env := envMap(map[string]string{
		EnvVar:                "test",
		LocalSettingsVar:      "custom.yaml",
		"FORMSITE_ADDR":       ":9100",
		"FORMSITE_DEBUG":      "true",
		"FORMSITE_ADMINS":     "a@example.com, b@example.com",
		"FORMSITE_EMAIL_PORT": "587",
	})

	got, err := Load(env, WithFS(files))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Env != Test || got.EmailBackend != "locmem" {
		t.Fatalf("expected test profile, got %+v", got)
	}
	if got.Addr != ":9100" || got.EmailPort != 587 || !got.Debug {
		t.Fatalf("environment variables must win: %+v", got)
	}
	if got.LogLevel != "warn" {
		t.Fatalf("local file must override the profile, got %q", got.LogLevel)
	}
	if diff := cmp.Diff([]string{"a@example.com", "b@example.com"}, got.Admins); diff != "" {
		t.Fatalf("admins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownLocalKeys(t *testing.T) {
	files := fstest.MapFS{DefaultLocalSettings: {Data: []byte("databse_url: x\n")}}
	if _, err := Load(envMap(nil), WithFS(files)); err == nil || !strings.Contains(err.Error(), "databse_url") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsMalformedLocalFile(t *testing.T) {
	files := fstest.MapFS{DefaultLocalSettings: {Data: []byte("addr: [")}}
	if _, err := Load(envMap(nil), WithFS(files)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadUnknownEnvironment(t *testing.T) {
	_, err := Load(WithEnvironment("staging"), envMap(nil), WithFS(fstest.MapFS{}))
	if !errors.Is(err, ErrUnknownEnvironment) {
		t.Fatalf("expected ErrUnknownEnvironment, got %v", err)
	}
}

func TestProductionValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{}, wantErr: "secret_key is required"},
		{name: "development secret", env: map[string]string{"FORMSITE_SECRET_KEY": DevelopmentSecretKey}, wantErr: "development key"},
		{name: "debug on", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_DEBUG": "1"}, wantErr: "debug must be off"},
		{name: "bad backend", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_EMAIL_BACKEND": "carrier-pigeon"}, wantErr: "email_backend"},
		{name: "bad store", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_STORE_BACKEND": "sqlite"}, wantErr: "store_backend"},
		{name: "same static and media url", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_STATIC_URL": "/assets/", "FORMSITE_MEDIA_URL": "/assets"}, wantErr: "must not overlap"},
		{name: "media inside static", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_MEDIA_URL": "/static/uploads/"}, wantErr: "must not overlap"},
		{name: "blank theme", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_THEME": " "}, wantErr: "theme is required"},
		{name: "cdn static url", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret", "FORMSITE_STATIC_URL": "https://cdn.example.com/media/"}},
		{name: "valid", env: map[string]string{"FORMSITE_SECRET_KEY": "s3cret"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(WithEnvironment(Production), envMap(tc.env), WithFS(fstest.MapFS{}))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if got.Debug || got.EmailBackend != "smtp" || got.LogFormat != "json" {
					t.Fatalf("unexpected production settings: %+v", got)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHostAllowed(t *testing.T) {
	s := Settings{AllowedHosts: []string{"example.com", ".example.org", "[::1]"}}
	cases := map[string]bool{
		"example.com":         true,
		"example.com:8000":    true,
		"www.example.com":     false,
		"example.org":         true,
		"forms.example.org":   true,
		"[::1]:8000":          true,
		"evil.com":            false,
		"notexample.org:8000": false,
	}
	for host, want := range cases {
		if got := s.HostAllowed(host); got != want {
			t.Fatalf("HostAllowed(%q) = %v, want %v", host, got, want)
		}
	}

	if (Settings{Debug: true}).HostAllowed("anything") != true {
		t.Fatalf("debug with no hosts must allow everything")
	}
	if (Settings{}).HostAllowed("anything") != false {
		t.Fatalf("no hosts outside debug must reject")
	}
}

func TestMaskedHidesSecrets(t *testing.T) {
	s := Settings{SecretKey: "s3cret", EmailHostPassword: "", Addr: ":8000"}
	values := make(map[string]any)
	for _, kv := range s.Masked() {
		values[kv.Key] = kv.Value
	}
	if values["secret_key"] != "********" {
		t.Fatalf("expected masked secret, got %#v", values["secret_key"])
	}
	if values["email_host_password"] != "" {
		t.Fatalf("empty secrets stay empty, got %#v", values["email_host_password"])
	}
	if values["addr"] != ":8000" {
		t.Fatalf("expected addr, got %#v", values["addr"])
	}
}
