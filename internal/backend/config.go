package backend

import (
	"fmt"

	"showcase/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config, source string) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	journalType := JournalType(appConfig.JournalBackend)
	if !journalType.IsValid() {
		return Config{}, fmt.Errorf("invalid journal backend in config: %s", appConfig.JournalBackend)
	}

	return Config{
		Type:         journalType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		MemorySize:   appConfig.JournalSize,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		Source:       source,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid journal type %q: must be one of %v", c.Type, JournalTypes())
	}
	if c.Type == SQLiteJournal && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite journal")
	}
	// AMQP is optional
	return nil
}

// JournalTypes returns all valid journal types.
func JournalTypes() []JournalType {
	return []JournalType{MemoryJournal, SQLiteJournal}
}
