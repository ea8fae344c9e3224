package trade

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defiroute/clamm-go/entities"
	"github.com/defiroute/clamm-go/pool"
)

// SearcherConfig holds the searcher's dependencies.
type SearcherConfig struct {
	Registry prometheus.Registerer // Required for metrics.
	Logger   Logger                // Required for logging.
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *SearcherConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Searcher runs best-route searches with metrics and logging attached. Callers
// that want neither can use the plain BestTradeExactIn/BestTradeExactOut
// functions instead.
type Searcher struct {
	metrics *Metrics
	logger  Logger
}

// NewSearcher constructs a searcher from a configuration, returning an error if the config is invalid.
func NewSearcher(cfg *SearcherConfig) (*Searcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Searcher{
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// BestTradeExactIn is the instrumented form of the package-level function.
func (s *Searcher) BestTradeExactIn(pools []*pool.Pool, amountIn *entities.CurrencyAmount, currencyOut entities.Currency, maxHops, maxNumResults int) ([]*Trade, error) {
	label := ExactInput.String()
	timer := prometheus.NewTimer(s.metrics.searchDuration.WithLabelValues(label))
	defer timer.ObserveDuration()

	sr, err := newSearch(pools, maxHops, maxNumResults, s.pruneHook(label))
	if err != nil {
		return nil, err
	}
	trades, err := sr.bestExactIn(nil, amountIn, amountIn, currencyOut, nil, maxHops, maxNumResults)
	if err != nil {
		s.logger.Error("best-route search failed", "tradeType", label, "err", err)
		return nil, err
	}
	s.metrics.routesFound.WithLabelValues(label).Add(float64(len(trades)))
	s.logger.Info("best-route search finished",
		"tradeType", label,
		"pools", len(pools),
		"maxHops", maxHops,
		"routes", len(trades),
	)
	return trades, nil
}

// BestTradeExactOut is the instrumented form of the package-level function.
func (s *Searcher) BestTradeExactOut(pools []*pool.Pool, currencyIn entities.Currency, amountOut *entities.CurrencyAmount, maxHops, maxNumResults int) ([]*Trade, error) {
	label := ExactOutput.String()
	timer := prometheus.NewTimer(s.metrics.searchDuration.WithLabelValues(label))
	defer timer.ObserveDuration()

	sr, err := newSearch(pools, maxHops, maxNumResults, s.pruneHook(label))
	if err != nil {
		return nil, err
	}
	trades, err := sr.bestExactOut(nil, amountOut, amountOut, currencyIn, nil, maxHops, maxNumResults)
	if err != nil {
		s.logger.Error("best-route search failed", "tradeType", label, "err", err)
		return nil, err
	}
	s.metrics.routesFound.WithLabelValues(label).Add(float64(len(trades)))
	s.logger.Info("best-route search finished",
		"tradeType", label,
		"pools", len(pools),
		"maxHops", maxHops,
		"routes", len(trades),
	)
	return trades, nil
}

func (s *Searcher) pruneHook(label string) func(*pool.Pool, error) {
	return func(p *pool.Pool, err error) {
		s.metrics.prunedBranches.WithLabelValues(label).Inc()
		s.logger.Debug("pruned search branch", "pool", p.ID().Hex(), "err", err)
	}
}
