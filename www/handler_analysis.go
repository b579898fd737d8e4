package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/source"
)

const noPricesMessage = "Inga priser tillgängliga"

func NewAnalysisHandler(logger *slog.Logger, cnfg *config.AppConfig, src PriceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseAnalysisQuery(r.URL, cnfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		doc, err := loadDocument(r.Context(), src, q, cnfg)
		if errors.Is(err, source.ErrNoPrices) {
			http.Error(w, noPricesMessage, http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("handling analysis request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := report.WriteJSON(w, doc); err != nil {
			logger.Error("handling analysis request", slog.Any("error", err))
		}
	}
}
