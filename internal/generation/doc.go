// Package generation defines the boundary between the deck pipeline and the
// external AI/LLM services (Gemini) that produce slide text and images.
//
// TextGenerator and ImageGenerator are the interfaces the pipeline depends on;
// platform/gemini provides the production implementation. Errors returned by
// implementations carry an HTTP-like status through StatusError so callers can
// tell rate limiting apart from every other failure without importing the SDK.
package generation
