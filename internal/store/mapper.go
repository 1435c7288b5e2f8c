package store

import (
	"time"

	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/pkg/logger"
)

// Mapper converts between raw remote records and one local entity
// type. ToEntity never fails: a malformed record yields a best-effort
// entity with documented defaults, because the admin UI must stay
// usable through remote schema drift. Every substitution is logged at
// debug level. ToRecord omits fields that are empty rather than
// writing placeholder values.
type Mapper[T any] interface {
	ToEntity(rec RawRecord) T
	ToRecord(e T) RawRecord
}

// logFallback records one mapper substitution (schema drift signal)
func logFallback(recordID, field, source string) {
	logger.GetLogger().Debug().
		Str("record_id", recordID).
		Str("field", field).
		Str("fallback", source).
		Msg("mapping fallback applied")
}

func strField(rec RawRecord, key string) (string, bool) {
	if v, ok := rec.Fields[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func timeField(rec RawRecord, key string) (time.Time, bool) {
	if v, ok := rec.Fields[key]; ok {
		if t, ok := coerceTime(v); ok && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// EventMapper maps the Event record kind
type EventMapper struct{}

func (EventMapper) ToEntity(rec RawRecord) domain.Event {
	e := domain.Event{ID: rec.ID, State: domain.StateActive}

	if title, ok := strField(rec, FieldTitle); ok {
		e.Title = title
	} else {
		e.Title = "Untitled Event"
		logFallback(rec.ID, FieldTitle, "default title")
	}

	if starts, ok := timeField(rec, FieldPrimaryDate); ok {
		e.StartsAt = starts
	} else if ends, ok := timeField(rec, FieldSecondaryDate); ok {
		e.StartsAt = ends
		logFallback(rec.ID, FieldPrimaryDate, FieldSecondaryDate)
	} else {
		e.StartsAt = rec.CreatedAt
		logFallback(rec.ID, FieldPrimaryDate, "record creation time")
	}

	if ends, ok := timeField(rec, FieldSecondaryDate); ok {
		e.EndsAt = ends
	} else {
		e.EndsAt = e.StartsAt
	}

	state, _ := strField(rec, FieldState)
	archivedAt, hasArchivedAt := timeField(rec, FieldArchivedAt)
	if state == string(domain.StateArchived) || hasArchivedAt {
		e.State = domain.StateArchived
		if hasArchivedAt {
			e.ArchivedAt = &archivedAt
		} else {
			// Keep the state/archivedAt invariant intact despite drift.
			created := rec.CreatedAt
			e.ArchivedAt = &created
			logFallback(rec.ID, FieldArchivedAt, "record creation time")
		}
	}

	e.AttachmentID, _ = strField(rec, FieldAttachmentID)
	e.LinkURL, _ = strField(rec, FieldLinkURL)
	e.Location, _ = strField(rec, FieldLocation)
	e.Notes, _ = strField(rec, FieldNotes)
	return e
}

func (EventMapper) ToRecord(e domain.Event) RawRecord {
	fields := map[string]interface{}{
		FieldState: string(e.State),
	}
	putStr(fields, FieldTitle, e.Title)
	putTime(fields, FieldPrimaryDate, e.StartsAt)
	putTime(fields, FieldSecondaryDate, e.EndsAt)
	if e.ArchivedAt != nil {
		putTime(fields, FieldArchivedAt, *e.ArchivedAt)
	}
	putStr(fields, FieldAttachmentID, e.AttachmentID)
	putStr(fields, FieldLinkURL, e.LinkURL)
	putStr(fields, FieldLocation, e.Location)
	putStr(fields, FieldNotes, e.Notes)
	return RawRecord{ID: e.ID, Kind: KindEvent, Fields: fields}
}

// PostMapper maps the ActivePost/ArchivedPost record kinds. Lifecycle
// state is carried by the record kind, not a field.
type PostMapper struct{}

func (PostMapper) ToEntity(rec RawRecord) domain.Post {
	p := domain.Post{ID: rec.ID, State: domain.StateActive}

	if title, ok := strField(rec, FieldTitle); ok {
		p.Title = title
	} else {
		p.Title = "Untitled Post"
		logFallback(rec.ID, FieldTitle, "default title")
	}

	// posted_at drift chain: primary_date, legacy uploaded_at key,
	// then the store's record creation timestamp.
	if posted, ok := timeField(rec, FieldPrimaryDate); ok {
		p.PostedAt = posted
	} else if uploaded, ok := timeField(rec, "uploaded_at"); ok {
		p.PostedAt = uploaded
		logFallback(rec.ID, FieldPrimaryDate, "uploaded_at")
	} else {
		p.PostedAt = rec.CreatedAt
		logFallback(rec.ID, FieldPrimaryDate, "record creation time")
	}

	p.ScheduledFor, _ = timeField(rec, FieldSecondaryDate)

	if rec.Kind == KindArchivedPost {
		p.State = domain.StateArchived
		if archivedAt, ok := timeField(rec, FieldArchivedAt); ok {
			p.ArchivedAt = &archivedAt
		} else {
			created := rec.CreatedAt
			p.ArchivedAt = &created
			logFallback(rec.ID, FieldArchivedAt, "record creation time")
		}
	}

	p.AttachmentID, _ = strField(rec, FieldAttachmentID)
	p.LinkURL, _ = strField(rec, FieldLinkURL)
	p.Content, _ = strField(rec, FieldContent)
	return p
}

func (PostMapper) ToRecord(p domain.Post) RawRecord {
	kind := KindActivePost
	if p.State == domain.StateArchived {
		kind = KindArchivedPost
	}
	fields := map[string]interface{}{}
	putStr(fields, FieldTitle, p.Title)
	putTime(fields, FieldPrimaryDate, p.PostedAt)
	putTime(fields, FieldSecondaryDate, p.ScheduledFor)
	if p.ArchivedAt != nil {
		putTime(fields, FieldArchivedAt, *p.ArchivedAt)
	}
	putStr(fields, FieldAttachmentID, p.AttachmentID)
	putStr(fields, FieldLinkURL, p.LinkURL)
	putStr(fields, FieldContent, p.Content)
	return RawRecord{ID: p.ID, Kind: kind, Fields: fields}
}

// AttachmentMapper maps the Attachment record kind
type AttachmentMapper struct{}

func (AttachmentMapper) ToEntity(rec RawRecord) domain.Attachment {
	a := domain.Attachment{ID: rec.ID}

	if title, ok := strField(rec, FieldTitle); ok {
		a.Title = title
	} else {
		a.Title = "Untitled Document"
		logFallback(rec.ID, FieldTitle, "default title")
	}

	if uploaded, ok := timeField(rec, FieldPrimaryDate); ok {
		a.UploadedAt = uploaded
	} else {
		a.UploadedAt = rec.CreatedAt
		logFallback(rec.ID, FieldPrimaryDate, "record creation time")
	}

	a.BlobRef, _ = strField(rec, FieldBlobRef)
	return a
}

func (AttachmentMapper) ToRecord(a domain.Attachment) RawRecord {
	fields := map[string]interface{}{}
	putStr(fields, FieldTitle, a.Title)
	putTime(fields, FieldPrimaryDate, a.UploadedAt)
	putStr(fields, FieldBlobRef, a.BlobRef)
	return RawRecord{ID: a.ID, Kind: KindAttachment, Fields: fields}
}

func putStr(fields map[string]interface{}, key, v string) {
	if v != "" {
		fields[key] = v
	}
}

func putTime(fields map[string]interface{}, key string, v time.Time) {
	if !v.IsZero() {
		fields[key] = v
	}
}
