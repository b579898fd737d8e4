package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

var printer = message.NewPrinter(language.Swedish)

// FormatDecimal renders an amount with two decimals and a Swedish decimal
// comma, without digit grouping.
func FormatDecimal(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.Scale(2), number.NoSeparator()))
}

func Write(w io.Writer, f Format, d Document) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatYAML:
		return WriteYAML(w, d)
	default:
		return WriteText(w, d)
	}
}

// WriteText prints one line per price followed by the summary lines, in
// Swedish.
func WriteText(w io.Writer, d Document) error {
	var b strings.Builder

	for _, r := range d.Prices {
		fmt.Fprintf(&b, "%s %s öre\n", r.Range, FormatDecimal(r.Ore))
	}

	if mean, ok := d.MeanOre.Get(); ok {
		fmt.Fprintf(&b, "Medelpris: %s öre\n", FormatDecimal(mean))
	}

	if e, ok := d.Cheapest.Get(); ok {
		fmt.Fprintf(&b, "Lägsta pris: %s öre (%s)\n", FormatDecimal(e.Ore), e.Range)
	}

	if e, ok := d.MostExpensive.Get(); ok {
		fmt.Fprintf(&b, "Högsta pris: %s öre (%s)\n", FormatDecimal(e.Ore), e.Range)
	}

	if win, ok := d.Window.Get(); ok {
		fmt.Fprintf(&b, "Påbörja laddning kl %s\n", win.StartAt)
		fmt.Fprintf(&b, "Medelpris för fönster: %s öre\n", FormatDecimal(win.AverageOre))
		fmt.Fprintf(&b, "Fönster: %s\n", win.Range)
		if cost, ok := win.EstimatedCost.Get(); ok {
			fmt.Fprintf(&b, "Uppskattad kostnad: %s kr\n", FormatDecimal(cost))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func WriteJSON(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, d Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
