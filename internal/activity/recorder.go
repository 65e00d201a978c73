// Package activity appends audit records without ever failing or blocking
// the action that triggered them.
package activity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// queueSize bounds the number of records waiting to be written.
const queueSize = 256

// writeTimeout bounds each insert so a stalled store cannot back up the
// worker indefinitely.
const writeTimeout = 5 * time.Second

// Recorder is a fire-and-forget audit log writer. Records are handed to a
// background worker; insert failures are logged and dropped, never
// surfaced to callers.
type Recorder struct {
	db *gorm.DB

	ch      chan models.Activity
	pending sync.WaitGroup
	worker  sync.WaitGroup
	once    sync.Once
}

// NewRecorder constructs a Recorder and starts its worker.
func NewRecorder(db *gorm.DB) *Recorder {
	r := &Recorder{
		db: db,
		ch: make(chan models.Activity, queueSize),
	}
	r.worker.Add(1)
	go r.run()
	return r
}

// Record enqueues one audit record. Never blocks: when the queue is full
// the record is dropped with a warning.
func (r *Recorder) Record(userID uint64, action, resource string, metadata map[string]any) {
	if r == nil {
		return
	}
	entry := models.Activity{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  marshalMetadata(metadata),
		Timestamp: time.Now().UTC(),
	}
	r.pending.Add(1)
	select {
	case r.ch <- entry:
	default:
		r.pending.Done()
		log.WithFields(log.Fields{"action": action, "resource": resource}).
			Warn("activity recorder: queue full, record dropped")
	}
}

// Flush blocks until every queued record has been written or dropped.
func (r *Recorder) Flush() {
	r.pending.Wait()
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.ch)
	})
	r.worker.Wait()
}

// run writes queued records until the channel closes.
func (r *Recorder) run() {
	defer r.worker.Done()
	for entry := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if errCreate := r.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
			log.WithError(errCreate).Warn("activity recorder: failed to persist record")
		}
		cancel()
		r.pending.Done()
	}
}

// Recent returns the newest records first, capped at limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Activity
	if errFind := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// marshalMetadata renders metadata as a JSON column value.
func marshalMetadata(metadata map[string]any) datatypes.JSON {
	if len(metadata) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	payload, errMarshal := json.Marshal(metadata)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("activity recorder: metadata not serializable")
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(payload)
}
