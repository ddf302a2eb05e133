package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ayusman/mudra/internal/link"
)

// DefaultListLimit caps list queries when no limit is given.
const DefaultListLimit = 100

// Command is one finished controller command.
type Command struct {
	ID        string        `json:"id"`
	Endpoint  string        `json:"endpoint"`
	Outcome   string        `json:"outcome"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

// CommandRepository records and lists delivered commands.
type CommandRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// Commands returns the command repository for this store.
func (s *Store) Commands() *CommandRepository {
	return &CommandRepository{db: s.db, logger: s.logger}
}

// Create inserts a command. A zero CreatedAt is set to now.
func (r *CommandRepository) Create(c *Command) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO commands (id, endpoint, outcome, attempts, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Endpoint, c.Outcome, c.Attempts, c.Error, c.Duration.Milliseconds(), c.CreatedAt,
	)
	return err
}

// GetByID retrieves a command by its ID.
func (r *CommandRepository) GetByID(id string) (*Command, error) {
	c := &Command{}
	var ms int64
	err := r.db.QueryRow(
		`SELECT id, endpoint, outcome, attempts, error, duration_ms, created_at
		 FROM commands WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Endpoint, &c.Outcome, &c.Attempts, &c.Error, &ms, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Duration = time.Duration(ms) * time.Millisecond
	return c, nil
}

// List returns the most recent commands, newest first.
func (r *CommandRepository) List(limit int) ([]*Command, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, endpoint, outcome, attempts, error, duration_ms, created_at
		 FROM commands ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Command
	for rows.Next() {
		c := &Command{}
		var ms int64
		if err := rows.Scan(&c.ID, &c.Endpoint, &c.Outcome, &c.Attempts, &c.Error, &ms, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByOutcome returns how many commands ended with each outcome.
func (r *CommandRepository) CountByOutcome() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM commands GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// RecordDelivery stores a finished delivery. It satisfies link.Recorder.
// Storage errors are logged and otherwise ignored.
func (r *CommandRepository) RecordDelivery(d link.Delivery) {
	c := &Command{
		ID:        d.ID,
		Endpoint:  d.Path,
		Outcome:   string(d.Outcome),
		Attempts:  d.Attempts,
		Duration:  d.FinishedAt.Sub(d.StartedAt),
		CreatedAt: d.FinishedAt,
	}
	if d.Err != nil {
		c.Error = d.Err.Error()
	}
	if err := r.Create(c); err != nil {
		r.logger.Warn("failed to record command", "id", c.ID, "endpoint", c.Endpoint, "error", err)
	}
}
