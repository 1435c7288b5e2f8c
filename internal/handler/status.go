package handler

import (
	"errors"
	"net/http"

	"github.com/noticedesk/noticedesk-backend/internal/common"
)

// statusForError maps repository errors onto HTTP statuses. Partial
// reconciliation is a conflict needing manual resolution, not a retry.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrInvalidLink):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidTransition),
		errors.Is(err, common.ErrPartialReconciliation):
		return http.StatusConflict
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
