package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
)

// SavePriceSamples replaces all samples stored for the area and delivery day.
func (d *Database) SavePriceSamples(ctx context.Context, area types.Area, date time.Time, samples []types.PriceSample) error {
	day := hours.DateString(date)
	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving price samples, begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM price_sample WHERE area = ? AND date = ?`,
		area.String(), day); err != nil {
		return fmt.Errorf("saving price samples, clearing %s %s: %w", area, day, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_sample (area, date, time_start, time_end, start_unix, sek_per_kwh, eur_per_kwh, exr, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(area, start_unix) DO UPDATE SET
			date = excluded.date,
			time_end = excluded.time_end,
			sek_per_kwh = excluded.sek_per_kwh,
			eur_per_kwh = excluded.eur_per_kwh,
			exr = excluded.exr,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("saving price samples, prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.ExecContext(ctx,
			area.String(),
			day,
			s.TimeStart.Format(time.RFC3339),
			s.TimeEnd.Format(time.RFC3339),
			s.TimeStart.Unix(),
			s.SEKPerKWh,
			s.EURPerKWh,
			s.EXR,
			fetchedAt)
		if err != nil {
			return fmt.Errorf("saving price sample %s: %w", s.TimeStart.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving price samples, commit: %w", err)
	}

	return nil
}

// GetPriceSamples returns the stored samples for the area and delivery day
// in chronological order, an empty slice if there are none.
func (d *Database) GetPriceSamples(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	day := hours.DateString(date)
	rows, err := d.read.QueryContext(ctx, `
		SELECT time_start, time_end, sek_per_kwh, eur_per_kwh, exr
		FROM price_sample
		WHERE area = ? AND date = ?
		ORDER BY start_unix ASC`,
		area.String(), day)
	if err != nil {
		return nil, fmt.Errorf("fetching price samples for %s %s: %w", area, day, err)
	}
	defer rows.Close()

	samples := []types.PriceSample{}
	for rows.Next() {
		var s types.PriceSample
		var start, end string
		if err := rows.Scan(&start, &end, &s.SEKPerKWh, &s.EURPerKWh, &s.EXR); err != nil {
			return nil, fmt.Errorf("scanning price sample row: %w", err)
		}
		if s.TimeStart, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("parsing price sample start %q: %w", start, err)
		}
		if s.TimeEnd, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("parsing price sample end %q: %w", end, err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price samples: %w", err)
	}

	return samples, nil
}

// HasPriceSamples reports whether anything is stored for the area and day.
func (d *Database) HasPriceSamples(ctx context.Context, area types.Area, date time.Time) (bool, error) {
	var n int
	err := d.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM price_sample WHERE area = ? AND date = ?`,
		area.String(), hours.DateString(date)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("counting price samples: %w", err)
	}
	return n > 0, nil
}

func (d *Database) PurgePriceSamples(ctx context.Context, retentionDays int) error {
	before := hours.DateString(time.Now().AddDate(0, 0, -retentionDays))
	res, err := d.write.ExecContext(ctx, `DELETE FROM price_sample WHERE date < ?`, before)
	if err != nil {
		return fmt.Errorf("error when purging price_sample: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		d.logger.Warn("can't get rows affected by purge", slog.String("table", "price_sample"), slog.Any("error", err))
	} else {
		d.logger.Debug(fmt.Sprintf("purged %d rows from price_sample", rows))
	}
	return nil
}
