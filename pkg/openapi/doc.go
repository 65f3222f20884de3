// Package openapi describes form submissions as OpenAPI 3 documents so API
// clients can discover which inputs a form accepts.
package openapi
