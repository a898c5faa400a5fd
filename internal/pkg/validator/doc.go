// Package validator provides a small validation abstraction for request and
// dependency structs.
//
// Business code depends on the Validator interface; the go-playground v10
// implementation lives in this package and reports failures as a
// V10ValidationError keyed by snake_case field names.
package validator
