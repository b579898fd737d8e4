package database

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const backupTimeLayout = "20060102_150405"

var backupFileRe = regexp.MustCompile(`^(\d{8}_\d{6})_elpris\.db\.zip$`)

func (d *Database) backupDir() string {
	return filepath.Join(filepath.Dir(d.path), "backups")
}

// Backup writes a zipped copy of the database to the backups directory next
// to it.
func (d *Database) Backup(ctx context.Context) error {
	_, err := d.backup(ctx, time.Now())
	return err
}

func (d *Database) backup(ctx context.Context, now time.Time) (string, error) {
	dir := d.backupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	snapshot := filepath.Join(dir, now.Format(backupTimeLayout)+"_elpris.db")
	if _, err := d.write.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", snapshot, err)
	}
	defer func() {
		if err := os.Remove(snapshot); err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn("could not remove uncompressed backup", slog.Any("error", err))
		}
	}()

	archive := snapshot + ".zip"
	if err := compress(snapshot, archive, filepath.Base(d.path)); err != nil {
		os.Remove(archive)
		return "", err
	}

	d.logger.Info("database backup complete", slog.String("filename", archive))
	return archive, nil
}

// compress stores src as a single deflated entry called name in a new zip
// file at dst.
func compress(src, dst, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer out.Close()

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("create zip header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	zw := zip.NewWriter(out)
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("write zip entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip file: %w", err)
	}
	return out.Close()
}

// PurgeBackups removes backups older than retentionDays. Files not named
// like a backup are left alone. Zero or less keeps everything.
func (d *Database) PurgeBackups(ctx context.Context, retentionDays int) error {
	if retentionDays < 1 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	dir := d.backupDir()
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read backup directory: %w", err)
	}

	removed := 0
	for _, file := range files {
		m := backupFileRe.FindStringSubmatch(file.Name())
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(backupTimeLayout, m[1], time.Local)
		if err != nil || !t.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, file.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", path, err)
		}
		removed++
	}

	d.logger.Info("backup purge complete", slog.Int("removed", removed))
	return nil
}
