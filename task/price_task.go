package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/types"
)

// PriceListener is told about every successful price update, date is the
// first of the analysed days.
type PriceListener interface {
	PricesUpdated(ctx context.Context, area types.Area, date time.Time, analysis prices.Analysis)
}

type PriceListenerFunc func(ctx context.Context, area types.Area, date time.Time, analysis prices.Analysis)

func (f PriceListenerFunc) PricesUpdated(ctx context.Context, area types.Area, date time.Time, analysis prices.Analysis) {
	f(ctx, area, date, analysis)
}

type priceRefresher interface {
	Refresh(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error)
}

type priceCache interface {
	HasPriceSamples(ctx context.Context, area types.Area, date time.Time) (bool, error)
}

func NewPriceTask(
	logger *slog.Logger,
	src priceRefresher,
	cache priceCache,
	cnfg *config.AppConfig,
	listeners []PriceListener,
) func() {
	var running sync.Mutex
	run := func() {
		if !running.TryLock() {
			logger.Debug("price task already running")
			return
		}
		defer running.Unlock()
		runPriceTask(logger, src, cnfg, listeners)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if needImmediatePriceUpdate(ctx, cache, cnfg) {
		logger.Info("need an immediate update of energy prices")
		run()
	} else {
		logger.Debug("no need for immediate update of energy prices")
	}

	return run
}

func runPriceTask(logger *slog.Logger, src priceRefresher, cnfg *config.AppConfig, listeners []PriceListener) {
	logger.Debug("running price task...")

	area, err := cnfg.EnergyPrice.GetArea()
	if err != nil {
		logger.Error("price task error", slog.Any("error", err))
		return
	}

	windowLength, err := cnfg.Analysis.GetWindowLength()
	if err != nil {
		logger.Warn("price task ignoring charging window", slog.Any("error", err))
		windowLength = 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := hours.Today()
	var samples []types.PriceSample
	for _, date := range []time.Time{today, hours.NextDay(today)} {
		day, err := src.Refresh(ctx, area, date)
		if err != nil {
			logger.Error("price task error, fetching prices",
				slog.String("date", hours.DateString(date)),
				slog.Any("error", err))
			continue
		}
		samples = append(samples, day...)
	}

	if len(samples) == 0 {
		logger.Error("price task error, no prices fetched")
		return
	}

	analysis := prices.Analyze(samples, prices.Options{
		WindowLength: windowLength,
		Sorted:       cnfg.Analysis.Sorted,
	})

	for _, l := range listeners {
		l.PricesUpdated(ctx, area, today, analysis)
	}

	logger.Info("price task done",
		slog.String("area", area.String()),
		slog.Int("samples", len(samples)))
}

// Prices for tomorrow are published in the afternoon, the cache is stale
// when it lacks the day twelve hours from now.
func needImmediatePriceUpdate(ctx context.Context, cache priceCache, cnfg *config.AppConfig) bool {
	if cache == nil {
		return true
	}
	area, err := cnfg.EnergyPrice.GetArea()
	if err != nil {
		return false
	}
	has, err := cache.HasPriceSamples(ctx, area, hours.Midnight(time.Now().Add(12*time.Hour)))
	return err != nil || !has
}
