package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/lessondeck/internal/api/shared"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/service"
	"github.com/phrazzld/lessondeck/internal/service/auth"
)

// PDFContentType is the MIME type of PDF exports.
const PDFContentType = "application/pdf"

// LessonPlanHandler handles lesson plan HTTP requests.
type LessonPlanHandler struct {
	plans  service.LessonPlanService
	decks  service.DeckService
	logger *slog.Logger
}

// NewLessonPlanHandler creates a new LessonPlanHandler.
func NewLessonPlanHandler(
	plans service.LessonPlanService,
	decks service.DeckService,
	logger *slog.Logger,
) *LessonPlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonPlanHandler{
		plans:  plans,
		decks:  decks,
		logger: logger.With("component", "lesson_plan_handler"),
	}
}

// ListLessonPlans handles GET /api/lesson-plans.
func (h *LessonPlanHandler) ListLessonPlans(w http.ResponseWriter, r *http.Request) {
	page, err := h.plans.ListLessonPlans(r.Context(), parseListParams(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list lesson plans")
		return
	}
	shared.RespondOK(w, r, http.StatusOK, page)
}

// CreateLessonPlan handles POST /api/lesson-plans.
func (h *LessonPlanHandler) CreateLessonPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return
	}

	var req CreateLessonPlanRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, shared.CodeValidation,
			"Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, shared.CodeValidation,
			SanitizeValidationError(err), err)
		return
	}

	plan, err := h.plans.CreateLessonPlan(r.Context(), userID, service.CreateLessonPlanInput{
		Module:   req.Module,
		Grade:    req.Grade,
		Lesson:   req.Lesson,
		StartUp:  req.StartUp,
		Practice: req.Practice,
		Apply:    req.Apply,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("lesson plan created",
		"lesson_plan_id", plan.ID)
	shared.RespondOK(w, r, http.StatusCreated, plan)
}

// GetLessonPlan handles GET /api/lesson-plans/{id}.
func (h *LessonPlanHandler) GetLessonPlan(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	plan, err := h.plans.GetLessonPlan(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondOK(w, r, http.StatusOK, plan)
}

// ExportLessonPlanPDF handles GET /api/lesson-plans/{id}/export.pdf.
func (h *LessonPlanHandler) ExportLessonPlanPDF(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.plans.ExportLessonPlanPDF(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	writeAttachment(w, r, PDFContentType, fmt.Sprintf("lesson-plan-%s.pdf", id), out)
}

// CreateDeck handles POST /api/lesson-plans/{id}/decks. Generation runs in
// the background, so the pending deck is returned with 202 Accepted.
func (h *LessonPlanHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.decks.CreateDeck(r.Context(), userID, planID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Location", "/api/decks/"+d.ID.String())
	shared.RespondOK(w, r, http.StatusAccepted, deckToResponse(d, 0, nil))
}

// writeAttachment sends a rendered export as a download.
func writeAttachment(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("failed to write export", "error", err, "filename", filename)
	}
}
