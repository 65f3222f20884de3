// Package model defines the renderer-facing view of a form. The forms package
// produces a FormModel from either an unbound form (initial values) or a bound
// one (submitted values plus validation errors); renderers only ever see this
// representation. Field.Widget names the component a renderer should use
// (text, hidden, checkbox, radio, select) and Choices carries the options of
// radio and select widgets with their checked state already resolved.
package model
