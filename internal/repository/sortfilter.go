package repository

import (
	"sort"
	"strings"

	"github.com/noticedesk/noticedesk-backend/internal/domain"
)

// SortOrder selects the displayed ordering of a collection
type SortOrder string

const (
	SortDateAsc   SortOrder = "date_asc"
	SortDateDesc  SortOrder = "date_desc"
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
)

// ParseSortOrder maps a query parameter to a sort order, defaulting to
// date ascending.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortDateDesc, SortTitleAsc, SortTitleDesc:
		return SortOrder(s)
	default:
		return SortDateAsc
	}
}

// Apply returns the displayed subset of a collection: entities whose
// search text contains filterText (case-insensitive), stably sorted by
// the given order. The input is never modified. The stable sort keeps
// equal-keyed entities in insertion order so UI selection does not
// jump on reload.
func Apply[T domain.Entity[T]](collection []T, filterText string, order SortOrder) []T {
	needle := strings.ToLower(strings.TrimSpace(filterText))

	out := make([]T, 0, len(collection))
	for _, e := range collection {
		if needle == "" || strings.Contains(strings.ToLower(e.SearchText()), needle) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch order {
		case SortDateDesc:
			return a.PrimaryDate().After(b.PrimaryDate())
		case SortTitleAsc:
			return strings.ToLower(a.EntityTitle()) < strings.ToLower(b.EntityTitle())
		case SortTitleDesc:
			return strings.ToLower(a.EntityTitle()) > strings.ToLower(b.EntityTitle())
		default:
			return a.PrimaryDate().Before(b.PrimaryDate())
		}
	})
	return out
}
