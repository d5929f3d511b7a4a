package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillpath/backend/internal/http/response"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/services"
	"github.com/skillpath/backend/internal/types"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

// GetMyProgress returns every progress record the caller holds, with the
// roadmap summary populated.
func (h *ProgressHandler) GetMyProgress(c *gin.Context) {
	records, err := h.progressService.GetMyProgress(c.Request.Context())
	if err != nil {
		h.log.Error("GetMyProgress failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, records, len(records))
}

func (h *ProgressHandler) GetProgressForRoadmap(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "roadmapId")
	if !ok {
		return
	}
	record, err := h.progressService.GetProgressForRoadmap(c.Request.Context(), roadmapID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, record)
}

func (h *ProgressHandler) StartRoadmap(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "roadmapId")
	if !ok {
		return
	}
	record, err := h.progressService.StartRoadmap(c.Request.Context(), roadmapID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, record)
}

func (h *ProgressHandler) CompleteDay(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "roadmapId")
	if !ok {
		return
	}
	weekNumber, ok := parseIntParam(c, "weekNumber")
	if !ok {
		return
	}
	dayNumber, ok := parseIntParam(c, "dayNumber")
	if !ok {
		return
	}
	record, err := h.progressService.CompleteDay(c.Request.Context(), roadmapID, weekNumber, dayNumber)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, record)
}

type submitQuizRequest struct {
	Answers []types.SubmittedAnswer `json:"answers"`
}

func (h *ProgressHandler) SubmitQuiz(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "roadmapId")
	if !ok {
		return
	}
	quizID, ok := parseUUIDParam(c, "quizId")
	if !ok {
		return
	}
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "please provide quiz answers")
		return
	}
	result, err := h.progressService.SubmitQuiz(c.Request.Context(), roadmapID, quizID, req.Answers)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type submitProjectRequest struct {
	SubmissionURL string `json:"submissionUrl"`
}

func (h *ProgressHandler) SubmitProject(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "roadmapId")
	if !ok {
		return
	}
	weekNumber, ok := parseIntParam(c, "weekNumber")
	if !ok {
		return
	}
	var req submitProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "please provide a submission URL")
		return
	}
	entry, err := h.progressService.SubmitProject(c.Request.Context(), roadmapID, weekNumber, req.SubmissionURL)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, entry)
}

// GetAllProgress is the admin view across every user and roadmap.
func (h *ProgressHandler) GetAllProgress(c *gin.Context) {
	records, err := h.progressService.GetAllProgress(c.Request.Context())
	if err != nil {
		h.log.Error("GetAllProgress failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, records, len(records))
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}
