package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formsite/internal/mail"
	"github.com/goliatone/go-formsite/internal/metrics"
	"github.com/goliatone/go-formsite/internal/responses"
	"github.com/goliatone/go-formsite/internal/settings"
	"github.com/goliatone/go-formsite/internal/site"
)

// Stack is a fully wired application plus what it needs released on exit.
type Stack struct {
	Handler http.Handler
	Store   responses.Store
	Mailer  mail.Sender
	Metrics *metrics.Metrics
	Site    *site.Site
}

// Close releases the backing services.
func (s *Stack) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// Wire builds every collaborator named by cfg. Console mail goes to
// mailOut.
func Wire(cfg settings.Settings, logger *slog.Logger, mailOut io.Writer) (*Stack, error) {
	store, health, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	mailer, err := mail.New(mail.Config{
		Backend:  cfg.EmailBackend,
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailHostUser,
		Password: cfg.EmailHostPassword,
		Out:      mailOut,
	})
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	m := metrics.New()
	s, err := site.New(site.Deps{
		Config: site.Config{
			SecretKey:     cfg.SecretKey,
			FromEmail:     cfg.DefaultFromEmail,
			Admins:        cfg.Admins,
			StaticURL:     cfg.StaticURL,
			SecureCookies: !cfg.Debug,
			Theme:         cfg.Theme,
			ThemeVariant:  cfg.ThemeVariant,
		},
		Store:   store,
		Mailer:  mailer,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	handler, err := Application(Deps{
		Settings: cfg,
		Logger:   logger,
		Site:     s,
		Metrics:  m,
		Health:   health,
	})
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	return &Stack{
		Handler: handler,
		Store:   store,
		Mailer:  mailer,
		Metrics: m,
		Site:    s,
	}, nil
}

func newStore(cfg settings.Settings) (responses.Store, func(context.Context) error, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return responses.NewMemoryStore(), nil, nil
	case "redis":
		store := responses.NewRedisStore(cfg.RedisAddr)
		return store, store.Ping, nil
	default:
		return nil, nil, fmt.Errorf("server: unknown store backend %q", cfg.StoreBackend)
	}
}
