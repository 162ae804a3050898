package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
    CREATE TABLE IF NOT EXISTS chat_leads (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        phone TEXT NOT NULL,
        country TEXT NOT NULL,
        initial_message TEXT,
        chat_messages TEXT, -- JSON array of {message, sender, timestamp}
        status TEXT NOT NULL DEFAULT 'new',
        assigned_to INTEGER,
        ip_address TEXT,
        user_agent TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_chat_leads_status ON chat_leads (status);
    CREATE INDEX IF NOT EXISTS idx_chat_leads_created_at ON chat_leads (created_at);
    `

func NewSQLiteStore(dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Transcript appends are read-modify-write; one writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err = db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLStore{db: db, dialect: dialectSQLite}, nil
}
