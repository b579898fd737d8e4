package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/database"
)

const maintenanceTimeout = time.Minute

type maintenanceStep struct {
	name string
	run  func(ctx context.Context) error
}

// NewMaintenanceTask backs up the database and trims backups, log entries
// and price samples older than the configured retention. A failing step is
// logged and does not stop the following ones.
func NewMaintenanceTask(logger *slog.Logger, db *database.Database, cnfg *config.AppConfig) func() {
	steps := []maintenanceStep{
		{"backup", db.Backup},
		{"purge backups", func(ctx context.Context) error {
			return db.PurgeBackups(ctx, cnfg.Database.GetBackupRetentionDays())
		}},
		{"purge log", func(ctx context.Context) error {
			return db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries())
		}},
		{"purge price samples", func(ctx context.Context) error {
			return db.PurgePriceSamples(ctx, cnfg.Database.GetDataRetentionDays())
		}},
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()

		failed := 0
		for _, step := range steps {
			if err := step.run(ctx); err != nil {
				failed++
				logger.Error("maintenance step failed", slog.String("step", step.name), slog.Any("error", err))
			}
		}

		logger.Info("maintenance done", slog.Int("steps", len(steps)), slog.Int("failed", failed))
	}
}
