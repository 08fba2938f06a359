package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

// statementTypes are the timeseries series requested for every statement,
// without the period prefix. Row names are derived with rowName.
var statementTypes = []string{
	"TotalRevenue",
	"OperatingRevenue",
	"GrossProfit",
	"EBITDA",
	"NormalizedEBITDA",
	"EBIT",
	"OperatingIncome",
	"NetIncome",
	"NetIncomeCommonStockholders",
	"NetIncomeFromContinuingOperationNetMinorityInterest",
	"NetIncomeIncludingNoncontrollingInterests",
	"DilutedEPS",
	"BasicEPS",
}

// statementHistory is how far back a statement request reaches.
const statementHistory = 10

type statementFetcher struct {
	provider.BaseFetcher
	sess *session
	now  func() time.Time
}

func newStatementFetcher(sess *session, opts provider.FetcherOptions, now func() time.Time) *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelFinancialStatement,
			"Income statement line items by fiscal period from Yahoo fundamentals-timeseries",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod},
			opts,
		),
		sess: sess,
		now:  now,
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := toYFTicker(params[provider.ParamSymbol])
	period := params[provider.ParamPeriod]
	if period == "" {
		period = provider.PeriodAnnual
	}
	if !provider.ValidPeriod(period) {
		return nil, fmt.Errorf("unsupported period %q", period)
	}

	cacheKey := provider.CacheKey(f.ModelType(), provider.QueryParams{
		provider.ParamSymbol: symbol,
		provider.ParamPeriod: period,
	})
	var cached models.FinancialTable
	if f.CacheGet(ctx, cacheKey, &cached) {
		return newCachedResult(&cached), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	types := make([]string, len(statementTypes))
	for i, t := range statementTypes {
		types[i] = period + t
	}
	now := f.now()
	q := url.Values{
		"symbol":  {symbol},
		"type":    {strings.Join(types, ",")},
		"period1": {strconv.FormatInt(now.AddDate(-statementHistory, 0, 0).Unix(), 10)},
		"period2": {strconv.FormatInt(now.Unix(), 10)},
	}

	var resp yfTimeseriesResponse
	path := "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(symbol)
	if err := f.sess.getJSON(ctx, path, q, false, &resp); err != nil {
		return nil, fmt.Errorf("fetch statement %s: %w", symbol, err)
	}
	if resp.Timeseries.Error != nil {
		return nil, resp.Timeseries.Error
	}

	// Series without points leave an empty table. That is a valid answer
	// for funds and thinly covered listings.
	table := buildStatementTable(resp.Timeseries.Result, period)
	_ = f.CacheSet(ctx, cacheKey, table)
	return newResult(table), nil
}

// buildStatementTable turns timeseries results into a table with one row
// per series and one column per asOfDate, most recent first. Null points
// and points without a raw value are left absent.
func buildStatementTable(results []yfTimeseriesResult, period string) *models.FinancialTable {
	type cell struct {
		row, col string
		v        float64
	}
	var (
		cells []cell
		rows  []string
		dates = make(map[string]bool)
	)
	for _, r := range results {
		if len(r.Meta.Type) == 0 {
			continue
		}
		row := rowName(strings.TrimPrefix(r.Meta.Type[0], period))
		hasValue := false
		for _, p := range r.Points {
			if p == nil || p.AsOfDate == "" || p.ReportedValue.Raw == nil {
				continue
			}
			cells = append(cells, cell{row: row, col: p.AsOfDate, v: *p.ReportedValue.Raw})
			dates[p.AsOfDate] = true
			hasValue = true
		}
		if hasValue {
			rows = append(rows, row)
		}
	}

	cols := make([]string, 0, len(dates))
	for d := range dates {
		cols = append(cols, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(cols)))

	table := models.NewFinancialTable(cols...)
	for _, r := range rows {
		table.AddRow(r)
	}
	for _, c := range cells {
		table.Set(c.row, c.col, c.v)
	}
	return table
}

// rowName converts a Yahoo series key to a statement row name:
// "TotalRevenue" → "Total Revenue", "NormalizedEBITDA" → "Normalized EBITDA".
// Runs of capitals stay together as one acronym.
func rowName(key string) string {
	runes := []rune(key)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
