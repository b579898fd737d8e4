package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/database"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/report"
	"github.com/icodeforyou/elpris-go/source"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

const usage = `Usage: elpris --zone SE1|SE2|SE3|SE4 [options]
Options:
  --date YYYY-MM-DD   Ange datum (default = idag)
  --sorted            Visa priser i fallande ordning
  --charging 2h|4h|8h Hitta optimalt laddfönster
  --format text|json|yaml
                      Utdataformat (default = text)
  --config PATH       Konfigurationsfil
  --help              Visa denna hjälptext
`

type app struct {
	out       io.Writer
	errOut    io.Writer
	providers func(names []string) ([]types.PriceProvider, error)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app{out: os.Stdout, errOut: os.Stderr, providers: source.Providers}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "elpris: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// run returns an error only for failures the user cannot fix by changing the
// arguments, those are answered with a message on out.
func (a app) run(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("elpris", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.String("zone", "", "pricing area")
	date := flags.String("date", "", "delivery day, YYYY-MM-DD")
	flags.Bool("sorted", false, "list prices most expensive first")
	flags.String("charging", "", "charging window length")
	format := flags.String("format", "text", "output format")
	configPath := flags.String("config", "", "path to config file")
	help := flags.Bool("help", false, "show help")

	if err := flags.Parse(args); err != nil {
		fmt.Fprint(a.out, usage)
		return nil
	}

	cnfg, err := config.Load(*configPath, flags)
	if err != nil {
		return err
	}

	if *help || cnfg.EnergyPrice.Area == "" {
		fmt.Fprint(a.out, usage)
		return nil
	}

	logger := slog.New(tint.NewHandler(a.errOut, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	}))

	area, err := cnfg.EnergyPrice.GetArea()
	if err != nil {
		fmt.Fprintf(a.out, "Ogiltig zon: %s\n", cnfg.EnergyPrice.Area)
		return nil
	}

	day := hours.Today()
	if *date != "" {
		if day, err = hours.ParseDate(*date); err != nil {
			fmt.Fprintf(a.out, "Ogiltigt datum: %s\n", *date)
			return nil
		}
	}

	windowLength, err := cnfg.Analysis.GetWindowLength()
	if err != nil {
		fmt.Fprintf(a.out, "Ogiltigt laddfönster: %s\n", *cnfg.Analysis.Charging)
		return nil
	}

	outFormat, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(a.out, "Ogiltigt format: %s\n", *format)
		return nil
	}

	providers, err := a.providers(cnfg.EnergyPrice.GetProviders())
	if err != nil {
		return err
	}

	var store source.Store
	if cnfg.Database.Path != "" {
		db, err := database.New(ctx, cnfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open price cache: %w", err)
		}
		defer db.Close()
		db.SetLogger(logger.With("module", "database"))
		store = db
	}

	src := source.New(logger.With("module", "source"), store, providers)
	samples, err := src.TwoDays(ctx, area, day)
	if errors.Is(err, source.ErrNoPrices) {
		fmt.Fprintln(a.out, "Inga priser tillgängliga")
		return nil
	}
	if err != nil {
		logger.Error("failed to get prices", slog.Any("error", err))
		fmt.Fprintln(a.out, "Inga priser tillgängliga")
		return nil
	}

	analysis := prices.Analyze(samples, prices.Options{
		WindowLength: windowLength,
		Sorted:       cnfg.Analysis.Sorted,
	})

	doc := report.NewDocument(area, day, analysis)
	if power := cnfg.EnergyPrice.ChargingPower; power != nil {
		doc.EstimateChargeCost(*power, cnfg.EnergyPrice.Tax, cnfg.EnergyPrice.GridFee)
	}

	return report.Write(a.out, outFormat, doc)
}
