// Package config handles configuration loading, parsing, and validation
// from environment variables (LESSONDECK_ prefix) and an optional config.yaml.
// It provides type-safe access to the settings of the server, the database,
// authentication, the Gemini client, the deck pipeline, the image cache and
// the task runner.
package config
