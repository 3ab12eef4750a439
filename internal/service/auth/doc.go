// Package auth validates the bearer tokens that carry a session: the user ID
// and, optionally, the grade the user teaches.
package auth
