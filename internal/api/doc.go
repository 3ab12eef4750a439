// Package api exposes lesson plans and decks over HTTP. Every JSON response
// is wrapped in a {code, message, data} envelope; exports are sent as file
// downloads.
package api
