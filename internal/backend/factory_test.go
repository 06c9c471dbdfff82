package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"showcase/internal/activity"
	"showcase/internal/amqp"
	"showcase/internal/config"
	"showcase/internal/storage"
)

func quietFactory() *DefaultFactory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateMemoryJournal(t *testing.T) {
	res, err := quietFactory().Create(context.Background(), Config{Type: MemoryJournal, MemorySize: 5})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Journal.(*activity.MemoryJournal); !ok {
		t.Errorf("Journal = %T, want *activity.MemoryJournal", res.Journal)
	}
	if res.Publisher != nil {
		t.Error("Publisher should be nil without AMQP")
	}
}

func TestCreateSQLiteJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	res, err := quietFactory().Create(context.Background(), Config{Type: SQLiteJournal, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, ok := res.Journal.(*storage.SQLiteJournal); !ok {
		t.Errorf("Journal = %T", res.Journal)
	}
	if err := res.Journal.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestCreateSkipsUnreachableBroker(t *testing.T) {
	f := quietFactory()
	f.connectAMQP = func(url, exchange, queue, source string) (*amqp.Client, error) {
		return nil, errors.New("connection refused")
	}
	res, err := f.Create(context.Background(), Config{Type: MemoryJournal, MemorySize: 1, AMQPURL: "amqp://localhost/"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Cleanup()
	if res.Publisher != nil {
		t.Error("Publisher should be nil when the broker is unreachable")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryJournal}, false},
		{"sqlite", Config{Type: SQLiteJournal, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteJournal}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateListsJournalTypes(t *testing.T) {
	err := Config{Type: "sheets"}.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, typ := range JournalTypes() {
		if !strings.Contains(err.Error(), string(typ)) {
			t.Errorf("Validate() error %q does not name %q", err, typ)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{JournalBackend: "sqlite", SQLiteDBPath: "a.db", JournalSize: 10, AMQPQueue: "q"}
	got, err := FromAppConfig(cfg, "showcase")
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != SQLiteJournal || got.SQLiteDBPath != "a.db" || got.Source != "showcase" || got.AMQPQueue != "q" {
		t.Errorf("FromAppConfig() = %+v", got)
	}
	if _, err := FromAppConfig(nil, ""); err == nil {
		t.Error("FromAppConfig(nil) error = nil")
	}
	if _, err := FromAppConfig(&config.Config{JournalBackend: "sheets"}, ""); err == nil {
		t.Error("FromAppConfig(sheets) error = nil")
	}
}
