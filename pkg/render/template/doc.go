// Package template defines the renderer-agnostic template engine contract.
package template
