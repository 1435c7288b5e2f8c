package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/repository"
)

// EventHandler exposes the event repository to the admin frontend
type EventHandler struct {
	repo *repository.Repository[domain.Event]
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(repo *repository.Repository[domain.Event]) *EventHandler {
	return &EventHandler{repo: repo}
}

// List handles GET /api/v1/events?partition=active|archived&filter=&sort=
func (h *EventHandler) List(c *gin.Context) {
	snap := h.repo.Snapshot()
	if snap.State == repository.StateIdle {
		_ = h.repo.Load(c.Request.Context())
		snap = h.repo.Snapshot()
	}

	partition := c.DefaultQuery("partition", "active")
	collection := snap.Active
	if partition == "archived" {
		collection = snap.Archived
	}

	items := repository.Apply(collection, c.Query("filter"), repository.ParseSortOrder(c.Query("sort")))
	common.SuccessResponse(c, items, &common.Meta{
		Partition:      partition,
		Total:          len(items),
		Fallback:       snap.Fallback,
		RetryableError: snap.LastError,
	})
}

// Reload handles POST /api/v1/events/reload
func (h *EventHandler) Reload(c *gin.Context) {
	if err := h.repo.Load(c.Request.Context()); err != nil {
		// Fallback data was installed; surface the degraded state.
		common.ErrorResponse(c, statusForError(err), "Reload failed, serving sample data", err)
		return
	}
	common.SuccessResponse(c, h.repo.Snapshot(), nil)
}

type eventRequest struct {
	Title        string     `json:"title" binding:"required"`
	StartsAt     time.Time  `json:"starts_at" binding:"required"`
	EndsAt       *time.Time `json:"ends_at"`
	Location     string     `json:"location"`
	Notes        string     `json:"notes"`
	LinkURL      string     `json:"link_url"`
	AttachmentID string     `json:"attachment_id"`
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event payload", err)
		return
	}

	draft := domain.Event{
		Title:        req.Title,
		StartsAt:     req.StartsAt,
		EndsAt:       req.StartsAt,
		Location:     req.Location,
		Notes:        req.Notes,
		LinkURL:      req.LinkURL,
		AttachmentID: req.AttachmentID,
	}
	if req.EndsAt != nil {
		draft.EndsAt = *req.EndsAt
	}

	created, err := h.repo.Create(c.Request.Context(), draft)
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to create event", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Success: true, Data: created})
}

type eventPatch struct {
	Title        *string    `json:"title"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	Location     *string    `json:"location"`
	Notes        *string    `json:"notes"`
	LinkURL      *string    `json:"link_url"`
	AttachmentID *string    `json:"attachment_id"`
}

// Update handles PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var patch eventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event payload", err)
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(e domain.Event) domain.Event {
		if patch.Title != nil {
			e.Title = *patch.Title
		}
		if patch.StartsAt != nil {
			e.StartsAt = *patch.StartsAt
		}
		if patch.EndsAt != nil {
			e.EndsAt = *patch.EndsAt
		}
		if patch.Location != nil {
			e.Location = *patch.Location
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		if patch.LinkURL != nil {
			e.LinkURL = *patch.LinkURL
		}
		if patch.AttachmentID != nil {
			e.AttachmentID = *patch.AttachmentID
		}
		return e
	})
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to update event", err)
		return
	}
	common.SuccessResponse(c, updated, nil)
}

// Archive handles POST /api/v1/events/:id/archive
func (h *EventHandler) Archive(c *gin.Context) {
	archived, err := h.repo.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to archive event", err)
		return
	}
	common.SuccessResponse(c, archived, nil)
}

// Unarchive handles POST /api/v1/events/:id/unarchive
func (h *EventHandler) Unarchive(c *gin.Context) {
	restored, err := h.repo.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to unarchive event", err)
		return
	}
	common.SuccessResponse(c, restored, nil)
}

// Delete handles DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to delete event", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": c.Param("id")}, nil)
}
