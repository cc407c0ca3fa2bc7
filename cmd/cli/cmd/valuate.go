// Package cmd - valuate command
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"inventory-valuation/adapters/scenario"
	"inventory-valuation/core/determinism"
	"inventory-valuation/core/engine"
	"inventory-valuation/core/explanation"
	"inventory-valuation/core/output"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/config"
	"inventory-valuation/internal/errors"
	"inventory-valuation/internal/logging"
)

type valuateOptions struct {
	scenarioFile string
	basis        string
	currency     string
	format       string
	out          string
	title        string
	formulas     bool
	notes        bool
	inputs       map[string]*string
}

func newValuateCmd() *cobra.Command {
	opts := &valuateOptions{inputs: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Value closing inventory and analyse overhead absorption",
		Long: `Compute prime cost, the overhead absorption rate, full cost per unit and
total closing inventory value, then the over/under absorption and its
expenditure and volume variances.

Inputs start from the configured defaults, are overlaid by --scenario
(JSON, YAML or HCL) and finally by individual flags.

Examples:
  inventory-valuation valuate
  inventory-valuation valuate --basis direct_labour_hours
  inventory-valuation valuate --scenario q3.yaml --format json
  inventory-valuation valuate --format xlsx --out valuation.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.scenarioFile, "scenario", "s", "", "scenario file (.json, .yaml, .yml, .hcl)")
	f.StringVarP(&opts.basis, "basis", "b", "", "activity basis (machine_hours, direct_labour_hours, units_produced)")
	f.StringVar(&opts.currency, "currency", "", "currency code (USD, EUR, GBP)")
	f.StringVarP(&opts.format, "format", "f", "", "output format (cli, json, markdown, latex, xlsx, pdf)")
	f.StringVarP(&opts.out, "out", "o", "", "write output to a file instead of stdout")
	f.StringVar(&opts.title, "title", "", "report title")
	f.BoolVar(&opts.formulas, "formulas", true, "include the workings section")
	f.BoolVar(&opts.notes, "notes", true, "include explanatory and audit notes")

	for _, field := range types.DefaultInputs().Fields() {
		opts.inputs[field.Key] = f.String(flagName(field.Key), "", strings.ToLower(field.Label[:1])+field.Label[1:])
	}

	return cmd
}

// flagName turns an input key into its flag name
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func (o *valuateOptions) run(cmd *cobra.Command) error {
	cfg := config.Get()
	flags := cmd.Flags()

	req, err := o.request(cfg, flags)
	if err != nil {
		return err
	}

	format := output.Format(cfg.Output.DefaultFormat)
	if o.format != "" {
		format = output.Format(strings.ToLower(o.format))
	}

	eng := engine.New(engine.Config{
		Version:  Version,
		Currency: cfg.Valuation.Currency,
		Options: output.Options{
			ShowFormulas: cfg.Output.ShowFormulas,
			ShowNotes:    cfg.Output.ShowNotes,
		},
	}, nil, logging.Logger)

	// Unknown formats fail before any figures are computed
	if _, err := eng.Formats().Get(format); err != nil {
		return err
	}

	report, err := eng.Valuate(cmd.Context(), *req)
	if err != nil {
		if errors.IsType(err, errors.TypeDivisionByZero) {
			fmt.Fprintln(cmd.ErrOrStderr(), explanation.ValidationMessage)
		}
		return err
	}

	if o.out == "" {
		return eng.Render(cmd.OutOrStdout(), report, format)
	}

	if err := writeReport(eng, o.out, report, format); err != nil {
		return err
	}
	logging.Info("report written", zap.String("path", o.out), zap.String("format", string(format)))
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", o.out)
	return nil
}

// writeReport renders into path. A failed render or close leaves no file behind.
func writeReport(eng *engine.Engine, path string, report *output.Report, format output.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Render("create output file", err).WithContext("path", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Render("close output file", cerr).WithContext("path", path)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return eng.Render(file, report, format)
}

// request merges configured defaults, the scenario file and flags, in that order
func (o *valuateOptions) request(cfg *config.Config, flags *pflag.FlagSet) (*engine.Request, error) {
	req := &engine.Request{
		Inputs:   cfg.Valuation.Defaults,
		Currency: cfg.Valuation.Currency,
		Title:    o.title,
		Source:   "defaults",
	}

	if o.scenarioFile != "" {
		sc, err := scenario.Load(o.scenarioFile, req.Inputs, req.Currency)
		if err != nil {
			return nil, err
		}
		req.Inputs = sc.Inputs
		req.Currency = sc.Currency
		req.Source = sc.Source
		if req.Title == "" {
			req.Title = sc.Name
		}
	}

	changed := false
	for _, key := range determinism.SortedKeys(o.inputs) {
		raw := o.inputs[key]
		if !flags.Changed(flagName(key)) {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(*raw))
		if err != nil {
			return nil, errors.Newf(errors.TypeInput, "--%s must be a number", flagName(key)).
				WithContext("value", *raw)
		}
		if err := req.Inputs.Set(key, v); err != nil {
			return nil, err
		}
		changed = true
	}
	if changed {
		req.Source = withFlags(req.Source)
	}

	if o.basis != "" {
		basis, err := types.ParseActivityBasis(o.basis)
		if err != nil {
			return nil, err
		}
		req.Inputs.ActivityBasis = basis
	}

	if o.currency != "" {
		c, err := types.ParseCurrency(o.currency)
		if err != nil {
			return nil, err
		}
		req.Currency = c
	}

	if flags.Changed("formulas") || flags.Changed("notes") {
		opts := output.Options{ShowFormulas: cfg.Output.ShowFormulas, ShowNotes: cfg.Output.ShowNotes}
		if flags.Changed("formulas") {
			opts.ShowFormulas = o.formulas
		}
		if flags.Changed("notes") {
			opts.ShowNotes = o.notes
		}
		req.Options = &opts
	}

	return req, nil
}

func withFlags(source string) string {
	if source == "defaults" {
		return "flags"
	}
	return source + " + flags"
}

// writeJSON is shared by the single-calculation commands
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
