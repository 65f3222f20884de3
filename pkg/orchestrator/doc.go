// Package orchestrator wires bound forms, model decorators and renderers into
// a single Generate call.
package orchestrator
