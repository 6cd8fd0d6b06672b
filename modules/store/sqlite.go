package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	task "github.com/example/task-service/domain/task"
)

// taskRecord is the relational projection of a task. Optional fields are
// stored as empty strings and tags as a JSON-encoded array; both convert
// back on read. Timestamps stay RFC 3339 strings so records round-trip
// byte-identically with the other backends.
type taskRecord struct {
	ID          string `gorm:"primaryKey"`
	Description string
	Assignee    string `gorm:"index"`
	Status      string `gorm:"index"`
	Priority    string `gorm:"index"`
	DueDate     string
	Tags        string
	CreatedAt   string
	UpdatedAt   string
}

func (taskRecord) TableName() string {
	return "tasks"
}

// SQLiteStore is a TaskStore for local development without Redis. Pagination
// is keyset-based over the id primary key, so the continuation cursor has
// the same shape as the other backends.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database file and migrates the
// tasks table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var indexColumns = map[IndexField]string{
	IndexAssignee: "assignee",
	IndexStatus:   "status",
	IndexPriority: "priority",
}

func toRecord(t *task.Task) (*taskRecord, error) {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return nil, err
	}
	rec := &taskRecord{
		ID:          t.ID,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        string(tags),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		rec.Assignee = *t.Assignee
	}
	if t.DueDate != nil {
		rec.DueDate = *t.DueDate
	}
	return rec, nil
}

func fromRecord(rec *taskRecord) (*task.Task, error) {
	t := &task.Task{
		ID:          rec.ID,
		Description: rec.Description,
		Status:      task.Status(rec.Status),
		Priority:    task.Priority(rec.Priority),
		Tags:        []string{},
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Assignee != "" {
		v := rec.Assignee
		t.Assignee = &v
	}
	if rec.DueDate != "" {
		v := rec.DueDate
		t.DueDate = &v
	}
	if rec.Tags != "" {
		if err := json.Unmarshal([]byte(rec.Tags), &t.Tags); err != nil {
			return nil, err
		}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// Get returns the task with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*task.Task, error) {
	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return fromRecord(&rec)
}

// Put upserts the task by primary key.
func (s *SQLiteStore) Put(ctx context.Context, t *task.Task) error {
	rec, err := toRecord(t)
	if err != nil {
		return storeErr(err)
	}
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// Delete removes the task with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}
	return nil
}

// QueryIndex returns up to limit tasks whose indexed column equals value.
func (s *SQLiteStore) QueryIndex(ctx context.Context, field IndexField, value string, limit int, startKey Key) (Page, error) {
	column, ok := indexColumns[field]
	if !ok {
		return Page{}, fmt.Errorf("unknown index field: %s", field)
	}
	return s.page(ctx, limit, startKey, func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" = ?", value)
	})
}

// Scan returns up to limit tasks from the whole table.
func (s *SQLiteStore) Scan(ctx context.Context, limit int, startKey Key) (Page, error) {
	return s.page(ctx, limit, startKey, func(q *gorm.DB) *gorm.DB { return q })
}

func (s *SQLiteStore) page(ctx context.Context, limit int, startKey Key, filter func(*gorm.DB) *gorm.DB) (Page, error) {
	lastID, err := decodeKeysetKey(startKey)
	if err != nil {
		return Page{}, err
	}

	q := filter(s.db.WithContext(ctx))
	if lastID != "" {
		q = q.Where("id > ?", lastID)
	}

	// One record beyond the page distinguishes a full final page from a
	// continued one, so an exhausted listing never hands out a key.
	var recs []taskRecord
	if err := q.Order("id").Limit(limit + 1).Find(&recs).Error; err != nil {
		return Page{}, storeErr(err)
	}
	more := len(recs) > limit
	if more {
		recs = recs[:limit]
	}

	var page Page
	for i := range recs {
		t, err := fromRecord(&recs[i])
		if err != nil {
			return Page{}, storeErr(err)
		}
		page.Tasks = append(page.Tasks, t)
	}
	if more {
		page.NextKey = encodeKeysetKey(recs[len(recs)-1].ID)
	}
	return page, nil
}
