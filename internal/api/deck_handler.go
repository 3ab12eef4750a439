package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/lessondeck/internal/api/shared"
	"github.com/phrazzld/lessondeck/internal/export"
	"github.com/phrazzld/lessondeck/internal/service"
)

// DeckHandler handles deck HTTP requests.
type DeckHandler struct {
	decks  service.DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With("component", "deck_handler"),
	}
}

// GetDeck handles GET /api/decks/{id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.decks.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondOK(w, r, http.StatusOK, deckViewToResponse(view))
}

// GetSlide handles GET /api/decks/{id}/slides/{index}.
func (h *DeckHandler) GetSlide(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	index, err := getPathInt(r, "index")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.decks.GetSlide(r.Context(), userID, deckID, index)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondOK(w, r, http.StatusOK, view)
}

// ExportPDF handles GET /api/decks/{id}/export.pdf.
func (h *DeckHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.decks.ExportDeckPDF(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	writeAttachment(w, r, PDFContentType, fmt.Sprintf("deck-%s.pdf", deckID), out)
}

// ExportDoc handles GET /api/decks/{id}/export.doc.
func (h *DeckHandler) ExportDoc(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.decks.ExportDeckDoc(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	writeAttachment(w, r, export.DocContentType, fmt.Sprintf("deck-%s.doc", deckID), out)
}
