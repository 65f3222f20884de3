package orchestrator_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/orchestrator"
	"github.com/goliatone/go-formsite/pkg/render"
)

type stubRenderer struct {
	name string
	last model.FormModel
	opts render.RenderOptions
}

func (s *stubRenderer) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}

func (s *stubRenderer) ContentType() string { return "text/plain" }

func (s *stubRenderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	s.last = form
	s.opts = opts
	return []byte("ok"), nil
}

func surveyForm() *forms.Form {
	return forms.NewForm("survey").
		MustAdd("subscribe", forms.MustBooleanChoiceField(forms.BooleanChoiceConfig{})).
		MustAdd("html_mail", forms.NewBooleanField(forms.Options{}))
}

func stubOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, *stubRenderer) {
	renderer := &stubRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	options = append([]orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
	}, options...)
	return orchestrator.New(options...), renderer
}

func TestOrchestrator_DefaultRendererProducesHTML(t *testing.T) {
	orch := orchestrator.New()
	output, err := orch.Generate(context.Background(), orchestrator.Request{
		Form:          surveyForm().Bind(url.Values{}),
		RenderOptions: render.RenderOptions{Action: "/"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(output)
	if strings.Count(html, `type="radio"`) != 2 {
		t.Fatalf("expected two radio inputs:\n%s", html)
	}
	if !strings.Contains(html, "This field is required.") {
		t.Fatalf("expected required error in output:\n%s", html)
	}
}

func TestOrchestrator_AppliesDecoratorsAfterTransformer(t *testing.T) {
	var order []string
	transformer := orchestrator.TransformerFunc(func(_ context.Context, form *model.FormModel) error {
		order = append(order, "transform")
		form.Metadata = map[string]string{"patched": "true"}
		return nil
	})
	decorator := model.DecoratorFunc(func(form *model.FormModel) error {
		order = append(order, "decorate:"+form.Metadata["patched"])
		return nil
	})

	orch, renderer := stubOrchestrator(
		orchestrator.WithTransformer(transformer),
		orchestrator.WithDecorators(decorator),
	)
	output, err := orch.Generate(context.Background(), orchestrator.Request{
		Form:          surveyForm().Unbound(),
		RenderOptions: render.RenderOptions{Action: "/submit"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "ok" {
		t.Fatalf("unexpected renderer output: %s", output)
	}
	if diff := cmp.Diff([]string{"transform", "decorate:true"}, order); diff != "" {
		t.Fatalf("pipeline order mismatch (-want +got):\n%s", diff)
	}
	if renderer.opts.Action != "/submit" {
		t.Fatalf("render options not forwarded: %+v", renderer.opts)
	}
}

func TestOrchestrator_WidgetRegistryFillsMissingWidgets(t *testing.T) {
	orch, _ := stubOrchestrator()
	orch.RegisterWidget("toggle", 200, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})

	form := model.FormModel{Fields: []model.Field{
		{Name: "enabled", Type: model.FieldTypeBoolean},
		{Name: "subscribe", Type: model.FieldTypeBoolean, Widget: model.WidgetRadio},
	}}
	if err := orch.WidgetRegistry().Decorate(&form); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if form.Fields[0].Widget != "toggle" {
		t.Fatalf("expected injected widget to win, got %q", form.Fields[0].Widget)
	}
	if form.Fields[1].Widget != model.WidgetRadio {
		t.Fatalf("explicit widget must be kept, got %q", form.Fields[1].Widget)
	}
}

func TestOrchestrator_Errors(t *testing.T) {
	orch, _ := stubOrchestrator()

	if _, err := orch.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected error for missing form")
	}
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Form: surveyForm().Unbound(), Renderer: "missing"}); err == nil {
		t.Fatalf("expected error for unknown renderer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Generate(ctx, orchestrator.Request{Form: surveyForm().Unbound()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	failing, _ := stubOrchestrator(orchestrator.WithDecorators(model.DecoratorFunc(func(*model.FormModel) error {
		return errors.New("boom")
	})))
	if _, err := failing.Generate(context.Background(), orchestrator.Request{Form: surveyForm().Unbound()}); err == nil || !strings.Contains(err.Error(), "decorate form") {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestPresetTransformer(t *testing.T) {
	files := fstest.MapFS{
		"preset.yaml": {Data: []byte(`
metadata:
  layout: compact
fields:
  subscribe:
    label: Send me the newsletter?
    helpText: One mail a month.
    attrs:
      class: inline
`)},
	}
	preset, err := orchestrator.NewPresetTransformerFromFS(files, "preset.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	orch, renderer := stubOrchestrator(orchestrator.WithTransformer(preset))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Form: surveyForm().Unbound()}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	subscribe, _ := renderer.last.Field("subscribe")
	if subscribe.Label != "Send me the newsletter?" || subscribe.HelpText != "One mail a month." {
		t.Fatalf("patch not applied: %+v", subscribe)
	}
	if subscribe.Attrs["class"] != "inline" || subscribe.Widget != model.WidgetRadio {
		t.Fatalf("unexpected attrs or widget: %+v", subscribe)
	}
	if renderer.last.Metadata["layout"] != "compact" {
		t.Fatalf("form metadata not applied: %#v", renderer.last.Metadata)
	}
}

func TestPresetTransformerRejectsUnknownFields(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformer([]byte(`{"fields": {"missing": {"label": "x"}}}`))
	if err != nil {
		t.Fatalf("parse preset: %v", err)
	}
	orch, _ := stubOrchestrator(orchestrator.WithTransformer(preset))
	if _, err := orch.Generate(context.Background(), orchestrator.Request{Form: surveyForm().Unbound()}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := orchestrator.NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
