package activity

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/emergent-labs/emergent-server/internal/db"
	"github.com/emergent-labs/emergent-server/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "activity.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestRecordAndFlush(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)
	defer recorder.Close()

	recorder.Record(1, "create", "project", map[string]any{"project_id": 7, "name": "My App"})
	recorder.Flush()

	var rows []models.Activity
	if errFind := conn.Find(&rows).Error; errFind != nil {
		t.Fatalf("find: %v", errFind)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	entry := rows[0]
	if entry.UserID != 1 || entry.Action != "create" || entry.Resource != "project" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	var metadata map[string]any
	if errUnmarshal := json.Unmarshal(entry.Metadata, &metadata); errUnmarshal != nil {
		t.Fatalf("metadata not json: %v", errUnmarshal)
	}
	if metadata["name"] != "My App" {
		t.Fatalf("metadata = %v", metadata)
	}
}

func TestRecordEmptyMetadata(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)
	defer recorder.Close()

	recorder.Record(2, "deploy", "project", nil)
	recorder.Flush()

	var entry models.Activity
	if errFind := conn.First(&entry).Error; errFind != nil {
		t.Fatalf("find: %v", errFind)
	}
	if string(entry.Metadata) != "{}" {
		t.Fatalf("metadata = %q, want {}", string(entry.Metadata))
	}
}

func TestRecent(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)
	defer recorder.Close()

	for i := 0; i < 5; i++ {
		recorder.Record(uint64(i+1), "create", "project", nil)
	}
	recorder.Flush()

	rows, errRecent := recorder.Recent(context.Background(), 3)
	if errRecent != nil {
		t.Fatalf("Recent: %v", errRecent)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	// Newest first.
	if rows[0].ID < rows[1].ID || rows[1].ID < rows[2].ID {
		t.Fatalf("rows not newest-first: %d, %d, %d", rows[0].ID, rows[1].ID, rows[2].ID)
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)
	defer recorder.Close()

	recorder.Record(1, "login", "session", nil)
	recorder.Flush()

	rows, errRecent := recorder.Recent(context.Background(), 0)
	if errRecent != nil {
		t.Fatalf("Recent: %v", errRecent)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}

func TestNilRecorderRecordIsNoop(t *testing.T) {
	var recorder *Recorder
	recorder.Record(1, "create", "project", nil)
}

func TestCloseIsIdempotent(t *testing.T) {
	recorder := NewRecorder(openTestDB(t))
	recorder.Close()
	recorder.Close()
}
