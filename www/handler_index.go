package www

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/source"
	"github.com/icodeforyou/elpris-go/types"
)

type indexData struct {
	Areas    []types.Area
	Area     types.Area
	Date     string
	Document report.Document
	Message  string
	Current  CurrentPrice
}

func NewIndexHandler(logger *slog.Logger, cnfg *config.AppConfig, src PriceSource, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseAnalysisQuery(r.URL, cnfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := indexData{
			Areas: types.Areas,
			Area:  q.area,
			Date:  hours.DateString(q.date),
		}

		// The live price is best effort, the websocket keeps it updated
		data.Current, _ = currentPrice(r.Context(), src, q.area, time.Now())

		doc, err := loadDocument(r.Context(), src, q, cnfg)
		switch {
		case errors.Is(err, source.ErrNoPrices):
			data.Message = noPricesMessage
		case err != nil:
			logger.Error("handling index request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		default:
			data.Document = doc
		}

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("index.html", data, w); err != nil {
			logger.Error("handling index request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
