package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsite/pkg/renderers/tui"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCheckPrintsMaskedSettings(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "local.yaml")
	if err := os.WriteFile(local, []byte("admins: [ops@example.com]\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	out, _, err := run(t, "check", "--env", "test", "--settings", local)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"secret_key", "********", "ops@example.com", "settings OK"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "formsite-test-secret-key") {
		t.Fatalf("secret leaked:\n%s", out)
	}
}

func TestCheckFailsOnInvalidSettings(t *testing.T) {
	t.Setenv("FORMSITE_SECRET_KEY", "")
	if _, _, err := run(t, "check", "--env", "production", "--settings", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("expected production without a secret key to fail")
	}
}

func TestRenderWritesSurvey(t *testing.T) {
	out, _, err := run(t, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(out, `type="radio"`); got != 4 {
		t.Fatalf("expected 4 radio inputs, got %d:\n%s", got, out)
	}

	dir := t.TempDir()
	preset := filepath.Join(dir, "preset.yaml")
	presetYAML := "fields:\n  subscribe:\n    label: Join the list?\n"
	if err := os.WriteFile(preset, []byte(presetYAML), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	target := filepath.Join(dir, "form.html")
	if _, _, err := run(t, "render", "--preset", preset, "-o", target); err != nil {
		t.Fatalf("render to file: %v", err)
	}
	html, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), "Join the list?") {
		t.Fatalf("expected preset label in output:\n%s", html)
	}
}

func TestRenderAppliesThemeVariant(t *testing.T) {
	out, _, err := run(t, "render", "--env", "test", "--variant", "dark")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`data-theme-variant="dark"`, `href="/static/formsite-vanilla.css"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, _, err := run(t, "render", "--env", "test", "--variant", "neon"); err == nil {
		t.Fatalf("expected unknown variant to fail")
	}
}

type scriptedDriver struct {
	inputs   []string
	selects  []int
	confirms []bool
	infos    []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", tui.ErrAborted
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	return answer, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, tui.ErrAborted
	}
	answer := d.confirms[0]
	d.confirms = d.confirms[1:]
	return answer, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, tui.ErrAborted
	}
	answer := d.selects[0]
	d.selects = d.selects[1:]
	return answer, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func withDriver(t *testing.T, driver tui.PromptDriver) {
	t.Helper()
	previous := newPromptDriver
	newPromptDriver = func(io.Writer) tui.PromptDriver { return driver }
	t.Cleanup(func() { newPromptDriver = previous })
}

func TestAskPrintsCleanedAnswers(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"Ana"},
		selects:  []int{1, 0},
		confirms: []bool{true},
	}
	withDriver(t, driver)

	out, _, err := run(t, "ask")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := map[string]any{
		"name":            "Ana",
		"subscribe":       false,
		"terms":           true,
		"newsletter_html": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestAskAborted(t *testing.T) {
	withDriver(t, &scriptedDriver{})
	if _, _, err := run(t, "ask"); err == nil || !strings.Contains(err.Error(), "aborted") {
		t.Fatalf("expected aborted error, got %v", err)
	}
}
