// Package domain contains the core business entities of lessondeck: lesson
// plans, the fixed slide sequence, and the decks generated from a plan. It is
// independent of any storage, transport or generative API.
package domain
