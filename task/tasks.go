package task

import (
	"context"
	"log/slog"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/database"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/source"
	"github.com/robfig/cron/v3"
)

const maintenanceRunAt = "30 2 * * *"

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PriceTask       func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	src *source.Source,
	cnfg *config.AppConfig,
	listeners ...PriceListener,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(cron.WithLocation(hours.Stockholm())),
		cnfg:            cnfg,
		PriceTask:       NewPriceTask(logger.With(slog.String("task", "energy_price")), src, db, cnfg, listeners),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.EnergyPrice.GetRunAt(), t.PriceTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(maintenanceRunAt, t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
