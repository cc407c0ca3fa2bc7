// Package cmd - single calculation commands
package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"inventory-valuation/api"
	"inventory-valuation/core/cost"
	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/config"
	"inventory-valuation/internal/errors"
)

// decimalFlags reads optional decimal flags, falling back to configured values
type decimalFlags struct {
	flags *pflag.FlagSet
	raw   map[string]*string
}

func newDecimalFlags(flags *pflag.FlagSet) *decimalFlags {
	return &decimalFlags{flags: flags, raw: make(map[string]*string)}
}

func (d *decimalFlags) add(name, usage string) {
	d.raw[name] = d.flags.String(name, "", usage)
}

func (d *decimalFlags) get(name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if !d.flags.Changed(name) {
		return fallback, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(*d.raw[name]))
	if err != nil {
		return decimal.Zero, errors.Newf(errors.TypeInput, "--%s must be a number", name).
			WithContext("value", *d.raw[name])
	}
	if v.IsNegative() {
		return decimal.Zero, errors.Newf(errors.TypeInput, "--%s must not be negative", name)
	}
	return v, nil
}

// getAll resolves names in order, stopping at the first error
func (d *decimalFlags) getAll(names []string, fallbacks []decimal.Decimal) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(names))
	for i, name := range names {
		v, err := d.get(name, fallbacks[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// reportDivision prints the user-facing message for a zero denominator
func reportDivision(cmd *cobra.Command, err error) error {
	if errors.IsType(err, errors.TypeDivisionByZero) {
		fmt.Fprintln(cmd.ErrOrStderr(), explanation.ValidationMessage)
	}
	return err
}

func newOARCmd() *cobra.Command {
	var (
		basis   string
		asJSON  bool
		numbers *decimalFlags
	)

	cmd := &cobra.Command{
		Use:   "oar",
		Short: "Compute the overhead absorption rate",
		Long: `Divide budgeted production overheads by the budgeted activity level.
Unset flags fall back to the configured defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			defaults := cfg.Valuation.Defaults

			b := defaults.ActivityBasis
			if basis != "" {
				parsed, err := types.ParseActivityBasis(basis)
				if err != nil {
					return err
				}
				b = parsed
			}

			v, err := numbers.getAll(
				[]string{"budgeted-overheads", "budgeted-activity-level"},
				[]decimal.Decimal{defaults.BudgetedOverheads, defaults.BudgetedActivityLevel},
			)
			if err != nil {
				return err
			}

			oar, err := cost.OverheadAbsorptionRate(v[0], v[1])
			if err != nil {
				return reportDivision(cmd, err)
			}

			resp := api.OARResponse{
				OverheadAbsorptionRate: oar,
				ActivityBasis:          b,
				Unit:                   b.Unit(),
				Display:                cfg.Valuation.Currency.Format(oar) + " per " + b.Unit(),
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Overhead Absorption Rate: %s\n", resp.Display)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s / %s %ss\n",
				cfg.Valuation.Currency.Format(v[0]), types.FormatQuantity(v[1]), b.Unit())
			return nil
		},
	}

	numbers = newDecimalFlags(cmd.Flags())
	numbers.add("budgeted-overheads", "budgeted production overheads")
	numbers.add("budgeted-activity-level", "budgeted activity level")
	cmd.Flags().StringVarP(&basis, "basis", "b", "", "activity basis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newAbsorptionCmd() *cobra.Command {
	var (
		asJSON  bool
		numbers *decimalFlags
	)

	cmd := &cobra.Command{
		Use:   "absorption",
		Short: "Compare absorbed overheads with actual overheads",
		Long: `Absorbed overheads are actual activity multiplied by the OAR.
Without --oar the rate is derived from the configured budget.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			defaults := cfg.Valuation.Defaults
			c := cfg.Valuation.Currency

			var defaultOAR decimal.Decimal
			if !cmd.Flags().Changed("oar") {
				oar, err := cost.OverheadAbsorptionRate(defaults.BudgetedOverheads, defaults.BudgetedActivityLevel)
				if err != nil {
					return reportDivision(cmd, err)
				}
				defaultOAR = oar
			}

			v, err := numbers.getAll(
				[]string{"actual-activity-level", "oar", "actual-overheads"},
				[]decimal.Decimal{defaults.ActualActivityLevel, defaultOAR, defaults.ActualOverheads},
			)
			if err != nil {
				return err
			}

			a := cost.AbsorptionVariance(v[0], v[1], v[2])
			finding := explanation.AbsorptionFinding(a, c)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), api.AbsorptionResponse{
					Absorption: a,
					Nature:     finding.Nature,
					Finding:    finding.Title + ". " + finding.Detail,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Absorbed Overheads: %s\n", c.Format(a.AbsorbedTotal))
			fmt.Fprintf(out, "Actual Overheads:   %s\n", c.Format(v[2]))
			fmt.Fprintln(out, natureColor(finding.Nature).Sprint(finding.Title))
			fmt.Fprintln(out, finding.Detail)
			return nil
		},
	}

	numbers = newDecimalFlags(cmd.Flags())
	numbers.add("actual-activity-level", "actual activity level")
	numbers.add("oar", "overhead absorption rate")
	numbers.add("actual-overheads", "actual production overheads")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newVarianceCmd() *cobra.Command {
	var (
		asJSON  bool
		numbers *decimalFlags
	)

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Split over/under absorption into expenditure and volume variances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			defaults := cfg.Valuation.Defaults
			c := cfg.Valuation.Currency

			v, err := numbers.getAll(
				[]string{"budgeted-overheads", "actual-overheads", "budgeted-units", "actual-units"},
				[]decimal.Decimal{defaults.BudgetedOverheads, defaults.ActualOverheads, defaults.BudgetedUnits, defaults.ActualUnits},
			)
			if err != nil {
				return err
			}

			d, err := cost.VarianceDecomposition(v[0], v[1], v[2], v[3])
			if err != nil {
				return reportDivision(cmd, err)
			}

			resp := api.VarianceResponse{Decomposition: d, Total: d.Total()}
			if cmd.Flags().Changed("over-under") {
				raw, _ := cmd.Flags().GetString("over-under")
				ou, err := decimal.NewFromString(strings.TrimSpace(raw))
				if err != nil {
					return errors.New(errors.TypeInput, "--over-under must be a number").WithContext("value", raw)
				}
				rec := cost.Reconcile(d, ou)
				resp.Reconciliation = &rec
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			for _, f := range []explanation.Finding{
				explanation.ExpenditureFinding(d.Expenditure, c),
				explanation.VolumeFinding(d.Volume, c),
			} {
				fmt.Fprintln(out, natureColor(f.Nature).Sprint(f.Title))
				fmt.Fprintf(out, "  %s\n", f.Detail)
			}
			fmt.Fprintf(out, "OAR per budgeted unit: %s\n", c.Format(d.OARPerUnit))
			fmt.Fprintf(out, "Total variance: %s\n", c.Format(resp.Total))
			if resp.Reconciliation != nil {
				fmt.Fprintln(out, explanation.ReconciliationNote(*resp.Reconciliation, c))
			}
			return nil
		},
	}

	numbers = newDecimalFlags(cmd.Flags())
	numbers.add("budgeted-overheads", "budgeted production overheads")
	numbers.add("actual-overheads", "actual production overheads")
	numbers.add("budgeted-units", "budgeted units")
	numbers.add("actual-units", "actual units")
	cmd.Flags().String("over-under", "", "over/(under) absorption to reconcile against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func natureColor(n types.VarianceNature) *color.Color {
	switch n {
	case types.Favourable:
		return color.New(color.FgGreen)
	case types.Adverse:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
