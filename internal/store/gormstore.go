package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noticedesk/noticedesk-backend/internal/common"
)

// recordRow is the flat MySQL projection of a RawRecord. One table
// holds every kind; kind plus primary_date is the main query index.
type recordRow struct {
	ID            string     `gorm:"column:id;primaryKey;size:36"`
	Kind          string     `gorm:"column:kind;size:32;index:idx_records_kind_date,priority:1"`
	Title         *string    `gorm:"column:title;size:255;index"`
	State         *string    `gorm:"column:state;size:16"`
	PrimaryDate   *time.Time `gorm:"column:primary_date;index:idx_records_kind_date,priority:2"`
	SecondaryDate *time.Time `gorm:"column:secondary_date"`
	ArchivedAt    *time.Time `gorm:"column:archived_at"`
	AttachmentID  *string    `gorm:"column:attachment_id;size:36"`
	LinkURL       *string    `gorm:"column:link_url;size:512"`
	Location      *string    `gorm:"column:location;size:255"`
	Notes         *string    `gorm:"column:notes;type:text"`
	Content       *string    `gorm:"column:content;type:text"`
	BlobRef       *string    `gorm:"column:blob_ref;size:255"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name
func (recordRow) TableName() string {
	return "nd_records"
}

// fieldColumns whitelists predicate/sort fields against columns
var fieldColumns = map[string]string{
	FieldTitle:         "title",
	FieldState:         "state",
	FieldPrimaryDate:   "primary_date",
	FieldSecondaryDate: "secondary_date",
	FieldArchivedAt:    "archived_at",
	FieldAttachmentID:  "attachment_id",
	FieldLinkURL:       "link_url",
}

// GormClient is the production RecordStoreClient backed by MySQL
type GormClient struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormClient wraps a gorm DB handle. timeout bounds every call;
// zero falls back to 15s.
func NewGormClient(db *gorm.DB, timeout time.Duration) *GormClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GormClient{db: db, timeout: timeout}
}

// Migrate creates or updates the records table
func (g *GormClient) Migrate() error {
	return g.db.AutoMigrate(&recordRow{})
}

func (g *GormClient) Query(ctx context.Context, kind Kind, predicates []Predicate, sortKeys []SortKey, limit int) ([]RawRecord, error) {
	if !HasIndexedSort(sortKeys) {
		return nil, fmt.Errorf("%w: query sort must include an indexed field", common.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tx := g.db.WithContext(ctx).Where("kind = ?", string(kind))
	for _, p := range predicates {
		col, ok := fieldColumns[p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown predicate field %q", common.ErrInvalidInput, p.Field)
		}
		switch p.Op {
		case OpEquals:
			tx = tx.Where(col+" = ?", p.Value)
		case OpNotEquals:
			// NULL columns count as "not equal", matching store semantics.
			tx = tx.Where("("+col+" <> ? OR "+col+" IS NULL)", p.Value)
		case OpLessOrEqual:
			tx = tx.Where(col+" <= ?", p.Value)
		default:
			return nil, fmt.Errorf("%w: unsupported operator %q", common.ErrInvalidInput, p.Op)
		}
	}

	var orders []string
	for _, s := range sortKeys {
		col, ok := fieldColumns[s.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort field %q", common.ErrInvalidInput, s.Field)
		}
		dir := "ASC"
		if !s.Ascending {
			dir = "DESC"
		}
		orders = append(orders, col+" "+dir)
	}
	tx = tx.Order(strings.Join(orders, ", "))
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []recordRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	records := make([]RawRecord, len(rows))
	for i, row := range rows {
		records[i] = rowToRecord(row)
	}
	return records, nil
}

func (g *GormClient) Fetch(ctx context.Context, id string) (RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var row recordRow
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return RawRecord{}, classify(err)
	}
	return rowToRecord(row), nil
}

func (g *GormClient) Save(ctx context.Context, rec RawRecord) (RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	row := recordToRow(rec)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	// Upsert keyed by id; created_at survives updates.
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "title", "state", "primary_date", "secondary_date",
			"archived_at", "attachment_id", "link_url", "location",
			"notes", "content", "blob_ref", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return RawRecord{}, classify(err)
	}

	var saved recordRow
	if err := g.db.WithContext(ctx).Where("id = ?", row.ID).First(&saved).Error; err != nil {
		return RawRecord{}, classify(err)
	}
	return rowToRecord(saved), nil
}

func (g *GormClient) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res := g.db.WithContext(ctx).Where("id = ?", id).Delete(&recordRow{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}
	return nil
}

// classify maps driver errors into the store error taxonomy. Timeouts
// and connectivity failures are all "store unavailable" to callers.
func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", common.ErrRecordNotFound, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
}

func rowToRecord(row recordRow) RawRecord {
	fields := make(map[string]interface{})
	putString := func(key string, v *string) {
		if v != nil && *v != "" {
			fields[key] = *v
		}
	}
	putTime := func(key string, v *time.Time) {
		if v != nil && !v.IsZero() {
			fields[key] = *v
		}
	}
	putString(FieldTitle, row.Title)
	putString(FieldState, row.State)
	putTime(FieldPrimaryDate, row.PrimaryDate)
	putTime(FieldSecondaryDate, row.SecondaryDate)
	putTime(FieldArchivedAt, row.ArchivedAt)
	putString(FieldAttachmentID, row.AttachmentID)
	putString(FieldLinkURL, row.LinkURL)
	putString(FieldLocation, row.Location)
	putString(FieldNotes, row.Notes)
	putString(FieldContent, row.Content)
	putString(FieldBlobRef, row.BlobRef)

	return RawRecord{
		ID:        row.ID,
		Kind:      Kind(row.Kind),
		CreatedAt: row.CreatedAt,
		Fields:    fields,
	}
}

func recordToRow(rec RawRecord) recordRow {
	row := recordRow{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		CreatedAt: rec.CreatedAt,
	}
	getString := func(key string) *string {
		if v, ok := rec.Fields[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return &s
			}
		}
		return nil
	}
	getTime := func(key string) *time.Time {
		if v, ok := rec.Fields[key]; ok {
			if t, ok := coerceTime(v); ok && !t.IsZero() {
				return &t
			}
		}
		return nil
	}
	row.Title = getString(FieldTitle)
	row.State = getString(FieldState)
	row.PrimaryDate = getTime(FieldPrimaryDate)
	row.SecondaryDate = getTime(FieldSecondaryDate)
	row.ArchivedAt = getTime(FieldArchivedAt)
	row.AttachmentID = getString(FieldAttachmentID)
	row.LinkURL = getString(FieldLinkURL)
	row.Location = getString(FieldLocation)
	row.Notes = getString(FieldNotes)
	row.Content = getString(FieldContent)
	row.BlobRef = getString(FieldBlobRef)
	return row
}
