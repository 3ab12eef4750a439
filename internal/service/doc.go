// Package service holds the use cases behind the API: creating and listing
// lesson plans, starting deck generations and reading decks back as slides
// or exports.
//
// Services depend on the store interfaces and on narrow interfaces for the
// task runner and exporter, never on their implementations. Store errors are
// translated to the sentinels in errors.go; anything unexpected is wrapped in
// a ServiceError.
package service
