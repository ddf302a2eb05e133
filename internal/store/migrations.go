package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Commands table - one row per finished controller command
		`CREATE TABLE IF NOT EXISTS commands (
			id TEXT PRIMARY KEY,
			endpoint TEXT NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('delivered', 'timeout', 'unreachable', 'status', 'failed')),
			attempts INTEGER NOT NULL DEFAULT 1,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Link events table - controller reachability transitions
		`CREATE TABLE IF NOT EXISTS link_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reachable INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_commands_created_at ON commands(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_link_events_created_at ON link_events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
