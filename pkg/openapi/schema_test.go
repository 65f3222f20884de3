package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/openapi"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

func surveyModel() model.FormModel {
	form := forms.NewForm("survey").
		MustAdd("name", forms.NewCharField(forms.CharOptions{MaxLength: 100})).
		MustAdd("subscribe", forms.MustBooleanChoiceField(forms.BooleanChoiceConfig{Label: "Subscribe?", HelpText: "Monthly digest."})).
		MustAdd("newsletter_html", forms.NewBooleanField(forms.Options{})).
		MustAdd("colour", forms.NewChoiceField(forms.Options{Required: true}, []widgets.Choice{
			{Value: "red", Label: "Red"},
			{Value: "blue", Label: "Blue"},
		}))
	return form.Unbound().Model()
}

func TestFormSchema(t *testing.T) {
	schema := openapi.FormSchema(surveyModel())

	if diff := cmp.Diff([]string{"subscribe", "colour"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	subscribe := schema.Properties["subscribe"].Value
	if !subscribe.Type.Is(openapi3.TypeBoolean) {
		t.Fatalf("expected boolean choice to be a boolean, got %v", subscribe.Type)
	}
	if subscribe.Extensions[openapi.ExtensionWidget] != model.WidgetRadio {
		t.Fatalf("expected radio widget extension, got %#v", subscribe.Extensions)
	}
	if diff := cmp.Diff([]string{"Yes", "No"}, subscribe.Extensions[openapi.ExtensionChoiceLabels]); diff != "" {
		t.Fatalf("choice labels mismatch (-want +got):\n%s", diff)
	}
	if subscribe.Title != "Subscribe?" || subscribe.Description != "Monthly digest." {
		t.Fatalf("unexpected title/description: %q %q", subscribe.Title, subscribe.Description)
	}

	checkbox := schema.Properties["newsletter_html"].Value
	if !checkbox.Type.Is(openapi3.TypeBoolean) || checkbox.Extensions[openapi.ExtensionWidget] != model.WidgetCheckbox {
		t.Fatalf("unexpected checkbox schema: %+v", checkbox)
	}
	if checkbox.Default != false {
		t.Fatalf("expected checkbox default false, got %#v", checkbox.Default)
	}

	name := schema.Properties["name"].Value
	if !name.Type.Is(openapi3.TypeString) || name.MaxLength == nil || *name.MaxLength != 100 {
		t.Fatalf("unexpected name schema: %+v", name)
	}

	colour := schema.Properties["colour"].Value
	if diff := cmp.Diff([]any{"red", "blue"}, colour.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentValidatesAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	doc := openapi.Document("formsite", "1.0.0", surveyModel())

	if err := openapi.Validate(ctx, doc); err != nil {
		t.Fatalf("validate: %v", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loader := openapi3.NewLoader()
	loaded, err := loader.LoadFromData(payload)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := loaded.Validate(ctx); err != nil {
		t.Fatalf("validate loaded: %v", err)
	}

	item := loaded.Paths.Find("/forms/survey")
	if item == nil || item.Post == nil {
		t.Fatalf("expected POST /forms/survey")
	}
	if item.Post.OperationID != "submit_survey" {
		t.Fatalf("unexpected operation id %q", item.Post.OperationID)
	}
	media := item.Post.RequestBody.Value.Content.Get("application/x-www-form-urlencoded")
	if media == nil || media.Schema.Ref != "#/components/schemas/survey" {
		t.Fatalf("expected form body referencing the component schema, got %+v", media)
	}
	if item.Post.Responses.Status(303) == nil || item.Post.Responses.Status(400) == nil {
		t.Fatalf("expected 303 and 400 responses")
	}

	component := loaded.Components.Schemas["survey"].Value
	if diff := cmp.Diff([]string{"subscribe", "colour"}, component.Required); diff != "" {
		t.Fatalf("round-tripped required mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitPath(t *testing.T) {
	cases := map[string]model.FormModel{
		"/forms/survey": {Name: "survey"},
		"/":             {Name: "survey", Action: "/"},
		"/forms/other":  {Name: "other", Action: "https://example.com/x"},
	}
	for want, form := range cases {
		if got := openapi.SubmitPath(form); got != want {
			t.Fatalf("SubmitPath(%+v) = %q, want %q", form, got, want)
		}
	}
}

func TestValidateNil(t *testing.T) {
	if err := openapi.Validate(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
