package database

import (
	"context"
	"embed"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
)

//go:embed migrations
var migrationsDir embed.FS

var migrationFileRe = regexp.MustCompile(`^(\d+)[-_]`)

type migration struct {
	version int
	name    string
}

func migrations() ([]migration, error) {
	files, err := migrationsDir.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var result []migration
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".sql" {
			continue
		}
		matches := migrationFileRe.FindStringSubmatch(f.Name())
		if len(matches) < 2 {
			return nil, fmt.Errorf("parse version from migration file: %s", f.Name())
		}
		ver, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("convert migration version from file %s: %w", f.Name(), err)
		}
		result = append(result, migration{version: ver, name: f.Name()})
	}

	slices.SortFunc(result, func(a, b migration) int { return a.version - b.version })
	return result, nil
}

func (d *Database) version(ctx context.Context) (int, error) {
	var ver int
	if err := d.read.QueryRowContext(ctx, "PRAGMA user_version").Scan(&ver); err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	return ver, nil
}

func (d *Database) migrate(ctx context.Context) error {
	currVer, err := d.version(ctx)
	if err != nil {
		return err
	}

	all, err := migrations()
	if err != nil {
		return err
	}

	// A fresh database has nothing worth a backup
	backupBeforeMigration := currVer == 0

	for _, m := range all {
		if m.version <= currVer {
			continue // Skip migration if already applied
		}

		if !backupBeforeMigration {
			backupBeforeMigration = true
			if err := d.Backup(ctx); err != nil {
				return fmt.Errorf("backup database before migration: %w", err)
			}
		}

		d.logger.Debug(fmt.Sprintf("applying migration %d", m.version))

		data, err := migrationsDir.ReadFile(path.Join("migrations", m.name))
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", m.name, err)
		}

		tx, err := d.write.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("start transaction for migration %d: %w", m.version, err)
		}

		if _, err = tx.ExecContext(ctx, string(data)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback migration %d: %w", m.version, rbErr)
			}
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}

		if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", m.version)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback migration %d: %w", m.version, rbErr)
			}
			return fmt.Errorf("update database version for migration %d: %w", m.version, err)
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
