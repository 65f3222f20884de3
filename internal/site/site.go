// Package site serves the public survey: the form itself, the submission
// endpoint, the thank-you page with running tallies and the OpenAPI schema
// of the form.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsite/internal/logging"
	"github.com/goliatone/go-formsite/internal/mail"
	"github.com/goliatone/go-formsite/internal/metrics"
	"github.com/goliatone/go-formsite/internal/responses"
	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/openapi"
	"github.com/goliatone/go-formsite/pkg/orchestrator"
	"github.com/goliatone/go-formsite/pkg/render"
	rendertemplate "github.com/goliatone/go-formsite/pkg/render/template"
	"github.com/goliatone/go-formsite/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formsite/pkg/themes"
)

// SchemaVersion is reported in the exported OpenAPI document.
const SchemaVersion = "1.0.0"

// SubmissionObserver receives one call per survey submission.
type SubmissionObserver interface {
	ObserveSubmission(form, outcome string)
}

// Config carries the settings the site reads.
type Config struct {
	SecretKey string
	FromEmail string
	Admins    []string
	StaticURL string
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
	Title         string
	// Theme and ThemeVariant pick the built-in theme variant (or a theme
	// registered on Deps.Themes). Empty Theme means the built-in one.
	Theme        string
	ThemeVariant string
}

// Deps lists the collaborators of a Site. Store and Mailer are required.
type Deps struct {
	Config       Config
	Store        responses.Store
	Mailer       mail.Sender
	Metrics      SubmissionObserver
	Logger       *slog.Logger
	Orchestrator *orchestrator.Orchestrator
	Form         *forms.Form
	// Themes resolves Config.Theme; nil uses the built-in theme only.
	Themes theme.ThemeSelector
}

// Site holds the survey handlers.
type Site struct {
	cfg    Config
	store  responses.Store
	mailer mail.Sender
	obs    SubmissionObserver
	logger *slog.Logger
	gen    *orchestrator.Orchestrator
	pages  rendertemplate.TemplateRenderer
	csrf   *CSRF
	form   *forms.Form
	theme  *theme.RendererConfig
}

// New validates deps and builds the site.
func New(deps Deps) (*Site, error) {
	if deps.Store == nil {
		return nil, errors.New("site: responses store is required")
	}
	if deps.Mailer == nil {
		return nil, errors.New("site: mail sender is required")
	}
	csrf, err := NewCSRF(deps.Config.SecretKey, deps.Config.SecureCookies)
	if err != nil {
		return nil, err
	}
	pages, err := gotemplate.New(
		gotemplate.WithFS(pageTemplates),
		gotemplate.WithExtension(".tmpl"),
	)
	if err != nil {
		return nil, fmt.Errorf("site: load page templates: %w", err)
	}

	cfg := deps.Config
	if strings.TrimSpace(cfg.StaticURL) == "" {
		cfg.StaticURL = "/static/"
	}
	if !strings.HasSuffix(cfg.StaticURL, "/") {
		cfg.StaticURL += "/"
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = "Newsletter survey"
	}

	selector := deps.Themes
	if selector == nil {
		selector = themes.NewSelector(themes.Builtin(cfg.StaticURL))
	}
	selection, err := selector.Select(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	s := &Site{
		cfg:    cfg,
		store:  deps.Store,
		mailer: deps.Mailer,
		obs:    deps.Metrics,
		logger: deps.Logger,
		gen:    deps.Orchestrator,
		pages:  pages,
		csrf:   csrf,
		form:   deps.Form,
		theme:  themes.RendererConfig(selection),
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.gen == nil {
		s.gen = orchestrator.New()
	}
	if s.form == nil {
		s.form = SurveyForm()
	}
	return s, nil
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string, string) {}

// Form returns the survey definition.
func (s *Site) Form() *forms.Form { return s.form }

// Routes mounts the site on r.
func (s *Site) Routes(r chi.Router) {
	r.Get("/", s.showForm)
	r.Post("/", s.submit)
	r.Get("/thanks", s.thanks)
	r.Get("/api/schema", s.schema)
}

func (s *Site) showForm(w http.ResponseWriter, r *http.Request) {
	token, err := s.csrf.Token(w, r)
	if err != nil {
		s.serverError(w, r, "issue csrf token", err)
		return
	}
	s.renderForm(w, r, s.form.Unbound(), token, http.StatusOK)
}

func (s *Site) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The submission could not be read.")
		return
	}
	if err := s.csrf.Verify(r); err != nil {
		s.logger.WarnContext(ctx, "csrf verification failed", "error", err)
		s.obs.ObserveSubmission(s.form.Name(), metrics.OutcomeRejected)
		s.renderError(w, r, http.StatusForbidden, "CSRF verification failed. Reload the form and try again.")
		return
	}

	bound := s.form.Bind(r.PostForm)
	if !bound.IsValid() {
		s.obs.ObserveSubmission(s.form.Name(), metrics.OutcomeInvalid)
		token, err := s.csrf.Token(w, r)
		if err != nil {
			s.serverError(w, r, "issue csrf token", err)
			return
		}
		s.renderForm(w, r, bound, token, http.StatusBadRequest)
		return
	}

	saved, err := s.store.Record(ctx, responses.Response{
		Form:    s.form.Name(),
		Answers: bound.CleanedData(),
	})
	if err != nil {
		s.serverError(w, r, "record response", err)
		return
	}
	s.obs.ObserveSubmission(s.form.Name(), metrics.OutcomeAccepted)
	s.logger.InfoContext(ctx, "response recorded", "form", saved.Form, "id", saved.ID)

	if err := s.notifyAdmins(ctx, saved); err != nil {
		s.logger.ErrorContext(ctx, "mail admins failed", "id", saved.ID, "error", err)
	}
	http.Redirect(w, r, "/thanks", http.StatusSeeOther)
}

func (s *Site) notifyAdmins(ctx context.Context, saved responses.Response) error {
	keys := make([]string, 0, len(saved.Answers))
	for key := range saved.Answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var body strings.Builder
	fmt.Fprintf(&body, "New %s response %s\n\n", saved.Form, saved.ID)
	for _, key := range keys {
		fmt.Fprintf(&body, "%s: %s\n", key, formatAnswer(saved.Answers[key]))
	}
	subject := fmt.Sprintf("[formsite] New %s response", saved.Form)
	return mail.MailAdmins(ctx, s.mailer, s.cfg.FromEmail, s.cfg.Admins, subject, body.String())
}

func formatAnswer(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case nil:
		return "-"
	case string:
		if v == "" {
			return "-"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (s *Site) thanks(w http.ResponseWriter, r *http.Request) {
	tallies, err := s.store.Tallies(r.Context(), s.form.Name())
	if err != nil {
		s.serverError(w, r, "load tallies", err)
		return
	}
	unbound := s.form.Unbound()
	rows := make([]map[string]any, 0, len(tallies))
	for _, tally := range tallies {
		label := forms.PrettyName(tally.Question)
		if field, ok := unbound.Field(tally.Question); ok {
			label = field.Label
		}
		// Counts go in as text: template data is JSON-normalised and numbers
		// would print as floats.
		rows = append(rows, map[string]any{
			"label": label,
			"yes":   strconv.Itoa(tally.Yes),
			"no":    strconv.Itoa(tally.No),
			"total": strconv.Itoa(tally.Total()),
		})
	}
	s.renderPage(w, r, "templates/thanks", http.StatusOK, map[string]any{
		"title": "Thank you",
		"rows":  rows,
	})
}

func (s *Site) schema(w http.ResponseWriter, r *http.Request) {
	rendered, err := s.gen.Model(r.Context(), s.form.Unbound())
	if err != nil {
		s.serverError(w, r, "build form model", err)
		return
	}
	rendered.Action = "/"
	doc := openapi.Document(s.cfg.Title, SchemaVersion, rendered)
	data, err := doc.MarshalJSON()
	if err != nil {
		s.serverError(w, r, "encode schema", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Site) renderForm(w http.ResponseWriter, r *http.Request, bound *forms.BoundForm, token string, status int) {
	html, err := s.gen.Generate(r.Context(), orchestrator.Request{
		Form: bound,
		RenderOptions: render.RenderOptions{
			Action:      "/",
			Hidden:      render.MergeHiddenFields(nil, render.CSRFToken(CSRFFieldName, token)),
			SubmitLabel: "Send answers",
			Theme:       s.theme,
		},
	})
	if err != nil {
		s.serverError(w, r, "render form", err)
		return
	}
	s.renderPage(w, r, "templates/survey", status, map[string]any{
		"title":     s.cfg.Title,
		"form_html": string(html),
		"invalid":   bound.IsBound() && !bound.IsValid(),
	})
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.renderPage(w, r, "templates/error", status, map[string]any{
		"title":   http.StatusText(status),
		"message": message,
	})
}

func (s *Site) renderPage(w http.ResponseWriter, r *http.Request, name string, status int, data map[string]any) {
	stylesheet := themes.AssetURL(s.theme, themes.AssetSiteStylesheet)
	if stylesheet == "" {
		stylesheet = s.cfg.StaticURL + "site.css"
	}
	data["site_stylesheet"] = stylesheet
	out, err := s.pages.RenderTemplate(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render page failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
