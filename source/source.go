package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
)

var ErrNoPrices = errors.New("no prices available")

// Store caches fetched days, typically *database.Database.
type Store interface {
	GetPriceSamples(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error)
	SavePriceSamples(ctx context.Context, area types.Area, date time.Time, samples []types.PriceSample) error
}

type Source struct {
	logger    *slog.Logger
	store     Store
	providers []types.PriceProvider
}

// New returns a Source trying providers in order. The store may be nil.
func New(logger *slog.Logger, store Store, providers []types.PriceProvider) *Source {
	if len(providers) == 0 {
		panic("no energy price providers")
	}
	return &Source{
		logger:    logger,
		store:     store,
		providers: providers,
	}
}

// Day returns the samples of one delivery day. Cached days are served from
// the store, otherwise the providers are asked. An empty slice without error
// means the day is not published yet.
func (s *Source) Day(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	date = hours.Midnight(date)
	if s.store != nil {
		cached, err := s.store.GetPriceSamples(ctx, area, date)
		if err != nil {
			s.logger.Warn("unable to read cached prices", slog.Any("error", err))
		} else if len(cached) > 0 {
			s.logger.Debug("using cached prices",
				slog.String("area", area.String()),
				slog.String("date", hours.DateString(date)),
				slog.Int("samples", len(cached)))
			return cached, nil
		}
	}
	return s.Refresh(ctx, area, date)
}

// Refresh asks the providers for the day regardless of the cache and stores
// a non-empty result.
func (s *Source) Refresh(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	date = hours.Midnight(date)
	samples, err := s.fetch(ctx, area, date)
	if err != nil {
		return nil, err
	}

	if s.store != nil && len(samples) > 0 {
		if err := s.store.SavePriceSamples(ctx, area, date, samples); err != nil {
			s.logger.Error("unable to cache prices", slog.Any("error", err))
		}
	}

	return samples, nil
}

func (s *Source) fetch(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	var errs []error
	for _, provider := range s.providers {
		samples, err := provider.GetPrices(ctx, area, date)
		if err != nil {
			s.logger.Warn("price provider failed",
				slog.String("provider", providerName(provider)),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", providerName(provider), err))
			continue
		}
		s.logger.Debug("fetched prices",
			slog.String("provider", providerName(provider)),
			slog.String("area", area.String()),
			slog.String("date", hours.DateString(date)),
			slog.Int("samples", len(samples)))
		return samples, nil
	}
	return nil, fmt.Errorf("unable to fetch prices for %s %s: %w",
		area, hours.DateString(date), errors.Join(errs...))
}

// TwoDays returns the day followed by the next one. Prices for tomorrow are
// published in the afternoon, until then only the first day is returned.
// ErrNoPrices is returned only when neither day has any prices.
func (s *Source) TwoDays(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	today, err := s.Day(ctx, area, date)
	if err != nil {
		return nil, err
	}

	tomorrow, err := s.Day(ctx, area, hours.NextDay(date))
	if err != nil {
		s.logger.Warn("unable to get prices for tomorrow", slog.Any("error", err))
		tomorrow = nil
	}

	all := make([]types.PriceSample, 0, len(today)+len(tomorrow))
	all = append(all, today...)
	all = append(all, tomorrow...)
	if len(all) == 0 {
		return nil, ErrNoPrices
	}
	return all, nil
}

func providerName(p types.PriceProvider) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
