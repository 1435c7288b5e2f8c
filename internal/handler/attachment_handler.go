package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/store"
)

// AttachmentHandler lists uploaded documents. Attachments are held by
// entities by reference only and resolved lazily, so this reads the
// store directly instead of keeping a repository collection.
type AttachmentHandler struct {
	client   store.Client
	mapper   store.AttachmentMapper
	fallback func() []domain.Attachment
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(client store.Client, gen *store.Generator) *AttachmentHandler {
	return &AttachmentHandler{client: client, fallback: gen.SampleAttachments}
}

// List handles GET /api/v1/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	sort := []store.SortKey{{Field: store.FieldPrimaryDate, Ascending: false}}
	records, err := h.client.Query(c.Request.Context(), store.KindAttachment, nil, sort, 0)
	if err != nil {
		items := h.fallback()
		common.SuccessResponse(c, items, &common.Meta{
			Total:          len(items),
			Fallback:       true,
			RetryableError: err.Error(),
		})
		return
	}

	items := make([]domain.Attachment, len(records))
	for i, rec := range records {
		items[i] = h.mapper.ToEntity(rec)
	}
	meta := &common.Meta{Total: len(items)}
	if len(items) == 0 {
		items = h.fallback()
		meta = &common.Meta{Total: len(items), Fallback: true}
	}
	common.SuccessResponse(c, items, meta)
}

// Get handles GET /api/v1/attachments/:id
func (h *AttachmentHandler) Get(c *gin.Context) {
	rec, err := h.client.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, statusForError(err), "Failed to fetch attachment", err)
		return
	}
	common.SuccessResponse(c, h.mapper.ToEntity(rec), nil)
}
