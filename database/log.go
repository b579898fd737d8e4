package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/icodeforyou/elpris-go/logging"
)

func (d *Database) SaveLogEntry(ctx context.Context, r logging.LogEntry) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO log (timestamp, level, message, attrs)
		VALUES (?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339),
		r.Level,
		r.Message,
		r.Attrs)
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

func (d *Database) GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]logging.LogEntry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT timestamp, level, message, attrs
		FROM log
		WHERE level >= ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		int(minLvl), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetching log entries: %w", err)
	}
	defer rows.Close()

	var ts string
	var entries []logging.LogEntry
	for rows.Next() {
		var r logging.LogEntry
		if err := rows.Scan(&ts, &r.Level, &r.Message, &r.Attrs); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		entries = append(entries, r)
	}

	return entries, rows.Err()
}

// PurgeLog keeps the maxEntries most recent log entries.
func (d *Database) PurgeLog(ctx context.Context, maxEntries int) error {
	res, err := d.write.ExecContext(ctx, `
		DELETE FROM log
		WHERE id NOT IN (SELECT id FROM log ORDER BY id DESC LIMIT ?)`,
		maxEntries)
	if err != nil {
		return fmt.Errorf("error when purging log: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil {
		d.logger.Debug(fmt.Sprintf("purged %d rows from log", rows))
	}
	return nil
}
