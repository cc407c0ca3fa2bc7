// Package engine runs a valuation end to end.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"inventory-valuation/core/cost"
	"inventory-valuation/core/determinism"
	"inventory-valuation/core/output"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
	"inventory-valuation/internal/logging"
)

// Engine is the primary entry point for valuations
type Engine struct {
	formats *output.Registry
	logger  *zap.Logger
	config  Config
}

// Config configures the engine
type Config struct {
	// Version is stamped on every report
	Version string

	// Currency is used when a request does not name one
	Currency types.Currency

	// Options are the default report sections
	Options output.Options
}

// Request is a single valuation request
type Request struct {
	// Inputs are the complete figures, already merged with defaults
	Inputs types.Inputs

	// Currency overrides Config.Currency when set
	Currency types.Currency

	// Title overrides the default report title
	Title string

	// Options overrides Config.Options when set
	Options *output.Options

	// Source describes where the inputs came from
	Source string

	// RequestID identifies an API request
	RequestID string
}

// New creates an engine. A nil registry uses output.Default(); a nil logger uses the global one.
func New(cfg Config, formats *output.Registry, logger *zap.Logger) *Engine {
	if formats == nil {
		formats = output.Default()
	}
	if logger == nil {
		logger = logging.Logger
	}
	if cfg.Currency == "" {
		cfg.Currency = types.CurrencyUSD
	}
	return &Engine{formats: formats, logger: logger, config: cfg}
}

// Formats returns the formatter registry
func (e *Engine) Formats() *output.Registry {
	return e.formats
}

// Valuate validates the inputs and evaluates them into a report
func (e *Engine) Valuate(ctx context.Context, req Request) (*output.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Internal("valuation cancelled", err)
	}

	start := time.Now()
	log := e.logger.With(
		zap.String("source", req.Source),
		zap.String("basis", req.Inputs.ActivityBasis.String()),
	)
	if req.RequestID != "" {
		log = log.With(zap.String("request_id", req.RequestID))
	}

	if err := req.Inputs.Validate(); err != nil {
		log.Debug("inputs rejected", zap.Error(err))
		return nil, err
	}

	v, err := cost.Evaluate(req.Inputs)
	if err != nil {
		log.Info("valuation withheld", zap.Error(err))
		return nil, err
	}

	currency := e.config.Currency
	if req.Currency != "" {
		currency = req.Currency
	}
	opts := e.config.Options
	if req.Options != nil {
		opts = *req.Options
	}

	report := output.NewReport(v, currency, opts)
	if req.Title != "" {
		report.Title = req.Title
	}
	report.Metadata.Version = e.config.Version
	report.Metadata.Source = req.Source
	report.Metadata.RequestID = req.RequestID
	report.Metadata.InputHash = determinism.InputsHash(req.Inputs, currency).Hex()

	if len(v.Withheld) > 0 {
		log.Info("variance analysis withheld", zap.Strings("withheld", v.Withheld))
	} else if !v.Reconciliation.Reconciled {
		log.Warn("variances do not reconcile to over/under absorption",
			zap.String("difference", v.Reconciliation.Difference.String()))
	}
	log.Debug("valuation complete",
		zap.String("total_inventory_value", v.TotalInventoryValue.String()),
		zap.String("absorption_status", string(v.Absorption.Status)),
		zap.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// Render writes report to w in the requested format
func (e *Engine) Render(w io.Writer, report *output.Report, format output.Format) error {
	f, err := e.formats.Get(format)
	if err != nil {
		return err
	}
	return f.Render(w, report)
}
