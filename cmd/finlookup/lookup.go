package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finlookup/internal/directory"
	"github.com/seenimoa/finlookup/internal/lookup"
	"github.com/seenimoa/finlookup/pkg/models"
)

// --- Lookup Command ---

var lookupCmd = &cobra.Command{
	Use:   "lookup [company|ticker]",
	Short: "Look up fundamentals for a company or ticker",
	Long: `Look up fundamentals for a company name from the directory, or for a
ticker symbol.

Examples:
  finlookup lookup Apple
  finlookup lookup --ticker 005930.KS --years 2023,2024
  finlookup lookup MSFT --period quarterly --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asTicker, _ := cmd.Flags().GetBool("ticker")
		years, _ := cmd.Flags().GetString("years")
		period, _ := cmd.Flags().GetString("period")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		req := buildRequest(a.dir, args[0], asTicker)
		req.Years = lookup.ParseYears(years)
		req.Period = period

		snap, err := a.svc.Lookup(cmd.Context(), req)
		if err != nil {
			return err
		}
		if asJSON {
			return writeSnapshotJSON(os.Stdout, snap)
		}
		renderSnapshot(os.Stdout, snap)
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("ticker", false, "treat the argument as a ticker symbol")
	lookupCmd.Flags().String("years", "", "comma-separated fiscal years, e.g. 2023,2024")
	lookupCmd.Flags().String("period", "", "statement period: annual, quarterly or trailing")
	lookupCmd.Flags().Bool("json", false, "print the snapshot as JSON")
}

// buildRequest treats arg as a company when the directory knows it, and as
// a ticker otherwise.
func buildRequest(dir *directory.Directory, arg string, asTicker bool) lookup.Request {
	if !asTicker {
		if _, ok := dir.Lookup(arg); ok {
			return lookup.Request{Company: arg}
		}
	}
	return lookup.Request{Ticker: arg}
}

func writeSnapshotJSON(w io.Writer, snap *models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// renderSnapshot prints a summary block followed by one column per period.
func renderSnapshot(w io.Writer, snap *models.Snapshot) {
	title := snap.Ticker
	if snap.ShortName != "" {
		title = fmt.Sprintf("%s (%s)", snap.ShortName, snap.Ticker)
	}
	fmt.Fprintln(w, text.Bold.Sprint(title))

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.Style().Options.DrawBorder = false
	summary.AppendRows([]table.Row{
		{"Currency", orNA(snap.Currency)},
		{"Market Cap", snap.MarketCap},
		{"Enterprise Value", snap.EnterpriseValue},
		{"Trailing P/E", snap.TrailingPE},
		{"P/E (latest)", snap.PERatio},
		{"Price", snap.Price},
	})
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	summary.Render()
	fmt.Fprintln(w)

	periods := append([]models.PeriodMetrics{snap.Latest}, snap.Years...)
	hdr := table.Row{"METRIC"}
	for i, pm := range periods {
		label := pm.Year
		if i == 0 {
			label = "LATEST " + pm.Period
		}
		hdr = append(hdr, label)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(hdr)
	for _, row := range []struct {
		name string
		get  func(models.PeriodMetrics) models.Metric
	}{
		{"Revenue", func(p models.PeriodMetrics) models.Metric { return p.Revenue }},
		{"Gross Profit", func(p models.PeriodMetrics) models.Metric { return p.GrossProfit }},
		{"EBITDA", func(p models.PeriodMetrics) models.Metric { return p.EBITDA }},
		{"EBIT", func(p models.PeriodMetrics) models.Metric { return p.EBIT }},
		{"Net Income", func(p models.PeriodMetrics) models.Metric { return p.NetIncome }},
		{"P/E", func(p models.PeriodMetrics) models.Metric { return p.PERatio }},
		{"EV/EBITDA", func(p models.PeriodMetrics) models.Metric { return p.EVToEBITDA }},
		{"EBITDA Margin", func(p models.PeriodMetrics) models.Metric { return p.EBITDAMargin }},
		{"Net Margin", func(p models.PeriodMetrics) models.Metric { return p.NetMargin }},
	} {
		r := table.Row{row.name}
		for _, pm := range periods {
			r = append(r, row.get(pm).String())
		}
		tw.AppendRow(r)
	}
	cfgs := make([]table.ColumnConfig, 0, len(periods))
	for i := range periods {
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)
	tw.Render()
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the company directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := directory.New(directory.Builtin()...)
		if cfg.Directory.File != "" {
			var err error
			if dir, err = directory.Load(cfg.Directory.File); err != nil {
				return err
			}
		}
		renderCompanies(os.Stdout, dir.Entries())
		return nil
	},
}

func renderCompanies(w io.Writer, entries []directory.Entry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"COMPANY", "TICKER"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Name, e.Ticker})
	}
	tw.Render()
}
