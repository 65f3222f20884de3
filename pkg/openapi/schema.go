package openapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formsite/pkg/model"
)

const (
	// ExtensionWidget names the widget a property renders with.
	ExtensionWidget = "x-widget"
	// ExtensionChoiceLabels lists option labels in the same order as the
	// option values.
	ExtensionChoiceLabels = "x-choice-labels"

	openAPIVersion = "3.0.3"
	formMediaType  = "application/x-www-form-urlencoded"
)

// FormSchema converts a form model into an object schema keyed by input name.
// Boolean fields map to `type: boolean`; the widget is kept in x-widget so a
// Yes/No radio question can be told apart from a checkbox.
func FormSchema(form model.FormModel) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = form.Name
	schema.Properties = make(openapi3.Schemas, len(form.Fields))

	for _, field := range form.Fields {
		name := field.HTMLName
		if name == "" {
			name = field.Name
		}
		schema.Properties[name] = openapi3.NewSchemaRef("", fieldSchema(field))
		if field.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeBoolean:
		schema = openapi3.NewBoolSchema()
		if field.Widget == model.WidgetCheckbox {
			schema.Default = false
		}
	default:
		schema = openapi3.NewStringSchema()
		if raw := strings.TrimSpace(field.Attrs["maxlength"]); raw != "" {
			if limit, err := strconv.ParseInt(raw, 10, 64); err == nil && limit > 0 {
				schema = schema.WithMaxLength(limit)
			}
		}
		if len(field.Choices) > 0 {
			values := make([]any, 0, len(field.Choices))
			for _, choice := range field.Choices {
				values = append(values, choice.Value)
			}
			schema = schema.WithEnum(values...)
		}
	}

	schema.Title = field.Label
	schema.Description = field.HelpText
	schema.ReadOnly = field.Disabled

	extensions := map[string]any{}
	if field.Widget != "" {
		extensions[ExtensionWidget] = field.Widget
	}
	if len(field.Choices) > 0 {
		labels := make([]string, 0, len(field.Choices))
		for _, choice := range field.Choices {
			labels = append(labels, choice.Label)
		}
		extensions[ExtensionChoiceLabels] = labels
	}
	if len(extensions) > 0 {
		schema.Extensions = extensions
	}
	return schema
}

// SubmitPath returns the path a form posts to: its action, or /forms/<name>.
func SubmitPath(form model.FormModel) string {
	if action := strings.TrimSpace(form.Action); strings.HasPrefix(action, "/") {
		return action
	}
	return "/forms/" + form.Name
}

// Document builds an OpenAPI document with one component schema and one
// submission operation per form.
func Document(title, version string, forms ...model.FormModel) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(forms)),
		},
	}

	for _, form := range forms {
		schema := FormSchema(form)
		doc.Components.Schemas[form.Name] = openapi3.NewSchemaRef("", schema)

		body := openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithSchemaRef(
				openapi3.NewSchemaRef("#/components/schemas/"+form.Name, schema),
				[]string{formMediaType},
			))

		operation := openapi3.NewOperation()
		operation.OperationID = "submit_" + form.Name
		operation.Summary = fmt.Sprintf("Submit the %s form", form.Name)
		operation.RequestBody = &openapi3.RequestBodyRef{Value: body}
		operation.Responses = openapi3.NewResponses(
			openapi3.WithStatus(303, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission accepted")}),
			openapi3.WithStatus(400, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Validation failed; the form is re-rendered with errors")}),
			openapi3.WithStatus(403, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("CSRF verification failed")}),
		)

		doc.Paths.Set(SubmitPath(form), &openapi3.PathItem{Post: operation})
	}
	return doc
}

// Validate checks doc against the OpenAPI 3 rules.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return fmt.Errorf("openapi: document is nil")
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}
