package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/backend/internal/http/response"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/services"
	"github.com/skillpath/backend/internal/types"
)

type QuizHandler struct {
	log         *logger.Logger
	quizService services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizService services.QuizService) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), quizService: quizService}
}

func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.quizService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List quizzes failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, quizzes, len(quizzes))
}

func (h *QuizHandler) ListForRoadmap(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	quizzes, err := h.quizService.ListForRoadmap(c.Request.Context(), roadmapID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, quizzes, len(quizzes))
}

func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, quiz)
}

func (h *QuizHandler) Create(c *gin.Context) {
	roadmapID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input types.Quiz
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid quiz body")
		return
	}
	quiz, err := h.quizService.Create(c.Request.Context(), roadmapID, &input)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, quiz)
}

func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input types.Quiz
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid quiz body")
		return
	}
	quiz, err := h.quizService.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, quiz)
}

func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
