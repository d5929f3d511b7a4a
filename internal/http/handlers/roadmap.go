package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/backend/internal/http/response"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/services"
	"github.com/skillpath/backend/internal/types"
)

type RoadmapHandler struct {
	log            *logger.Logger
	roadmapService services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmapService services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{
		log:            log.With("handler", "RoadmapHandler"),
		roadmapService: roadmapService,
	}
}

func (h *RoadmapHandler) List(c *gin.Context) {
	roadmaps, err := h.roadmapService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List roadmaps failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, roadmaps, len(roadmaps))
}

func (h *RoadmapHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	roadmap, err := h.roadmapService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, roadmap)
}

func (h *RoadmapHandler) Create(c *gin.Context) {
	var input types.Roadmap
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid roadmap body")
		return
	}
	roadmap, err := h.roadmapService.Create(c.Request.Context(), &input)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, roadmap)
}

func (h *RoadmapHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input types.Roadmap
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondErrorStatus(c, http.StatusBadRequest, "invalid roadmap body")
		return
	}
	roadmap, err := h.roadmapService.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, roadmap)
}

func (h *RoadmapHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.roadmapService.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
