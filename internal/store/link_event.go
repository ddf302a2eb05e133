package store

import (
	"database/sql"
	"log/slog"
	"time"
)

// LinkEvent is a controller reachability transition.
type LinkEvent struct {
	ID        int64     `json:"id"`
	Reachable bool      `json:"reachable"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkEventRepository records and lists link transitions.
type LinkEventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// LinkEvents returns the link event repository for this store.
func (s *Store) LinkEvents() *LinkEventRepository {
	return &LinkEventRepository{db: s.db, logger: s.logger}
}

// Create inserts an event and sets its ID.
func (r *LinkEventRepository) Create(e *LinkEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(
		`INSERT INTO link_events (reachable, created_at) VALUES (?, ?)`,
		e.Reachable, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

// List returns the most recent events, newest first.
func (r *LinkEventRepository) List(limit int) ([]*LinkEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, reachable, created_at FROM link_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LinkEvent
	for rows.Next() {
		e := &LinkEvent{}
		var reachable int
		if err := rows.Scan(&e.ID, &reachable, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Reachable = reachable != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordTransition stores a transition. Its signature matches
// link.TransitionFunc. Storage errors are logged.
func (r *LinkEventRepository) RecordTransition(reachable bool, at time.Time) {
	if err := r.Create(&LinkEvent{Reachable: reachable, CreatedAt: at}); err != nil {
		r.logger.Warn("failed to record link event", "reachable", reachable, "error", err)
	}
}
