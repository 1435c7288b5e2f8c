package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/repository"
)

// PostHandler exposes the news post repository to the admin frontend
type PostHandler struct {
	repo *repository.Repository[domain.Post]
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(repo *repository.Repository[domain.Post]) *PostHandler {
	return &PostHandler{repo: repo}
}

// List handles GET /api/v1/posts?partition=active|archived&filter=&sort=
func (h *PostHandler) List(c *gin.Context) {
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

// Reload handles POST /api/v1/posts/reload
func (h *PostHandler) Reload(c *gin.Context) {
	if err := h.repo.Load(c.Request.Context()); err != nil {
		common.ErrorResponse(c, statusForError(err), "Reload failed, serving sample data", err)
		return
	}
	common.SuccessResponse(c, h.repo.Snapshot(), nil)
}

type postRequest struct {
	Title        string     `json:"title" binding:"required"`
	PostedAt     *time.Time `json:"posted_at"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Content      string     `json:"content"`
	LinkURL      string     `json:"link_url"`
	AttachmentID string     `json:"attachment_id"`
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post payload", err)
		return
	}

	draft := domain.Post{
		Title:        req.Title,
		PostedAt:     time.Now(),
		Content:      req.Content,
		LinkURL:      req.LinkURL,
		AttachmentID: req.AttachmentID,
	}
	if req.PostedAt != nil {
		draft.PostedAt = *req.PostedAt
	}
	if req.ScheduledFor != nil {
		draft.ScheduledFor = *req.ScheduledFor
	}

	created, err := h.repo.Create(c.Request.Context(), draft)
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to create post", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Success: true, Data: created})
}

type postPatch struct {
	Title        *string    `json:"title"`
	PostedAt     *time.Time `json:"posted_at"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Content      *string    `json:"content"`
	LinkURL      *string    `json:"link_url"`
	AttachmentID *string    `json:"attachment_id"`
}

// Update handles PUT /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	var patch postPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post payload", err)
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), c.Param("id"), func(p domain.Post) domain.Post {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.PostedAt != nil {
			p.PostedAt = *patch.PostedAt
		}
		if patch.ScheduledFor != nil {
			p.ScheduledFor = *patch.ScheduledFor
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.LinkURL != nil {
			p.LinkURL = *patch.LinkURL
		}
		if patch.AttachmentID != nil {
			p.AttachmentID = *patch.AttachmentID
		}
		return p
	})
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to update post", err)
		return
	}
	common.SuccessResponse(c, updated, nil)
}

// Archive handles POST /api/v1/posts/:id/archive. Archiving a post
// replaces the record, so the returned entity carries a new id.
func (h *PostHandler) Archive(c *gin.Context) {
	archived, err := h.repo.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to archive post", err)
		return
	}
	common.SuccessResponse(c, archived, nil)
}

// Unarchive handles POST /api/v1/posts/:id/unarchive
func (h *PostHandler) Unarchive(c *gin.Context) {
	restored, err := h.repo.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to unarchive post", err)
		return
	}
	common.SuccessResponse(c, restored, nil)
}

// Delete handles DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to delete post", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": c.Param("id")}, nil)
}
