// Package lookup resolves a company or ticker into a financial snapshot:
// it maps names through the directory, fetches company info and the
// income statement concurrently, and runs the metric resolver over them.
package lookup

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finlookup/internal/analysis/fundamental"
	"github.com/seenimoa/finlookup/internal/directory"
	"github.com/seenimoa/finlookup/internal/infra"
	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

// Config tunes the service.
type Config struct {
	MaxYears int
	Period   string
	Timeout  time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{MaxYears: 4, Period: provider.PeriodAnnual, Timeout: 20 * time.Second}
}

// Request identifies the company to look up. Company takes precedence
// over Ticker.
type Request struct {
	Company string
	Ticker  string
	Years   []string
	Period  string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics records lookups on m.
func WithMetrics(m *infra.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides time.Now for FetchedAt.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service answers lookups. It is safe for concurrent use.
type Service struct {
	source  Source
	dir     *directory.Directory
	cfg     Config
	log     zerolog.Logger
	metrics *infra.Metrics
	now     func() time.Time
}

// NewService creates a lookup service.
func NewService(src Source, dir *directory.Directory, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.Period == "" {
		cfg.Period = def.Period
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if dir == nil {
		dir = directory.New(directory.Builtin()...)
	}
	s := &Service{
		source: src,
		dir:    dir,
		cfg:    cfg,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directory returns the company directory.
func (s *Service) Directory() *directory.Directory { return s.dir }

// Lookup resolves req into a snapshot.
//
// Errors: ErrMissingQuery and *RequestError for bad input, *NotFoundError
// for an unknown company, *ProviderError when either upstream fetch fails.
// Metrics missing from the statement are not errors; they are N/A in the
// snapshot. A ticker with company info but no statement at all still
// resolves, with every period metric N/A.
func (s *Service) Lookup(ctx context.Context, req Request) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := s.lookup(ctx, req)
	s.metrics.ObserveLookup(outcome(err), time.Since(start).Seconds())
	return snap, err
}

func (s *Service) lookup(ctx context.Context, req Request) (*models.Snapshot, error) {
	company := strings.TrimSpace(req.Company)
	ticker := strings.TrimSpace(req.Ticker)
	if company != "" {
		t, ok := s.dir.Lookup(company)
		if !ok {
			return nil, &NotFoundError{Company: company}
		}
		ticker = t
	}
	if ticker == "" {
		return nil, ErrMissingQuery
	}
	ticker = NormalizeTicker(ticker)

	period := req.Period
	if period == "" {
		period = s.cfg.Period
	}
	if !provider.ValidPeriod(period) {
		return nil, &RequestError{Param: "period", Reason: "must be annual, quarterly or trailing"}
	}
	for _, y := range req.Years {
		if !yearRe.MatchString(y) {
			return nil, &RequestError{Param: "years", Reason: "expected four-digit years, got " + y}
		}
	}

	log := s.log.With().Str("ticker", ticker).Str("period", period).Logger()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var (
		info  models.CompanyInfo
		table *models.FinancialTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.source.CompanyInfo(gctx, ticker)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = s.source.FinancialTable(gctx, ticker, period)
		if errors.Is(err, provider.ErrNoData) {
			// Funds and thin listings have quotes but no statement.
			log.Debug().Err(err).Msg("no statement rows")
			table, err = models.NewFinancialTable(), nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("provider fetch failed")
		return nil, &ProviderError{Ticker: ticker, Err: err}
	}

	years := req.Years
	if len(years) == 0 {
		years = fundamental.Years(table, s.cfg.MaxYears)
	}

	snap := Assemble(info, table, years)
	snap.Company = company
	snap.Ticker = ticker
	snap.PeriodType = period
	snap.FetchedAt = s.now().UTC()

	s.observeUnavailable(snap.Latest)
	log.Debug().
		Strs("years", years).
		Int("columns", len(table.Columns())).
		Msg("lookup resolved")
	return snap, nil
}

// Assemble builds a snapshot from already-fetched data. Identifiers and
// FetchedAt are left to the caller.
func Assemble(info models.CompanyInfo, table *models.FinancialTable, years []string) *models.Snapshot {
	marketCap := info.Number(models.InfoMarketCap)
	ev := info.Number(models.InfoEnterpriseValue)

	snap := &models.Snapshot{
		ShortName:       info.Name(),
		Currency:        info.String(models.InfoCurrency),
		MarketCap:       marketCap,
		EnterpriseValue: ev,
		TrailingPE:      info.Number(models.InfoTrailingPE),
		Price:           info.Number(models.InfoRegularMarketPrice),
		Latest:          fundamental.PeriodMetrics(table, "", marketCap, ev),
		Years:           make([]models.PeriodMetrics, 0, len(years)),
	}
	snap.PERatio = snap.Latest.PERatio
	for _, y := range years {
		snap.Years = append(snap.Years, fundamental.PeriodMetrics(table, y, marketCap, ev))
	}
	return snap
}

func (s *Service) observeUnavailable(pm models.PeriodMetrics) {
	if s.metrics == nil {
		return
	}
	for name, m := range map[string]models.Metric{
		"revenue":    pm.Revenue,
		"ebitda":     pm.EBITDA,
		"net_income": pm.NetIncome,
		"pe_ratio":   pm.PERatio,
	} {
		if !m.Valid {
			s.metrics.ObserveUnavailable(name)
		}
	}
}

// yearRe accepts fiscal years only, so a year can never match the
// month-day part of a column date.
var yearRe = regexp.MustCompile(`^(19|20)\d{2}$`)

// ParseYears splits a comma-separated year list, dropping blanks.
func ParseYears(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func outcome(err error) string {
	var (
		nf *NotFoundError
		pe *ProviderError
		re *RequestError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &pe):
		return "provider_error"
	case errors.As(err, &re), errors.Is(err, ErrMissingQuery):
		return "bad_request"
	}
	return "error"
}
