package www

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/types"
)

var errBadRequest = errors.New("bad request")

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

type analysisQuery struct {
	area    types.Area
	date    time.Time
	options prices.Options
}

// parseAnalysisQuery reads zone, date, charging and sorted from the query,
// anything left out falls back to the configuration.
func parseAnalysisQuery(u *url.URL, cnfg *config.AppConfig) (analysisQuery, error) {
	q := u.Query()
	res := analysisQuery{date: hours.Today()}

	var err error
	if zone := q.Get("zone"); zone != "" {
		res.area, err = types.ParseArea(zone)
	} else {
		res.area, err = cnfg.EnergyPrice.GetArea()
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if d := q.Get("date"); d != "" {
		if res.date, err = hours.ParseDate(d); err != nil {
			return res, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}

	if c := q.Get("charging"); c != "" {
		res.options.WindowLength, err = config.ParseWindowLength(c)
	} else {
		res.options.WindowLength, err = cnfg.Analysis.GetWindowLength()
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	res.options.Sorted = cnfg.Analysis.Sorted
	if s := q.Get("sorted"); s != "" {
		if res.options.Sorted, err = strconv.ParseBool(s); err != nil {
			return res, fmt.Errorf("%w: invalid sorted %q", errBadRequest, s)
		}
	}

	return res, nil
}

func loadDocument(ctx context.Context, src PriceSource, q analysisQuery, cnfg *config.AppConfig) (report.Document, error) {
	samples, err := src.TwoDays(ctx, q.area, q.date)
	if err != nil {
		return report.Document{}, err
	}

	doc := report.NewDocument(q.area, q.date, prices.Analyze(samples, q.options))
	if power := cnfg.EnergyPrice.ChargingPower; power != nil {
		doc.EstimateChargeCost(*power, cnfg.EnergyPrice.Tax, cnfg.EnergyPrice.GridFee)
	}
	return doc, nil
}
