// Package scenario loads valuation inputs from JSON, YAML or HCL files.
// Keys missing from a file fall back to the supplied defaults.
package scenario

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gopkg.in/yaml.v3"

	"inventory-valuation/core/determinism"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

// Format is a scenario file syntax
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// DetectFormat picks a format from a file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", errors.Newf(errors.TypeInput, "unsupported scenario file extension %q", filepath.Ext(path)).
			WithContext("path", path)
	}
}

// Scenario is a named set of inputs
type Scenario struct {
	Name     string
	Currency types.Currency
	Inputs   types.Inputs
	Source   string
}

// File is the on-disk shape shared by all three syntaxes. Figures accept
// numbers or numeric strings and keep full decimal precision.
type File struct {
	Name          string `json:"name" yaml:"name"`
	Currency      string `json:"currency" yaml:"currency"`
	ActivityBasis string `json:"activity_basis" yaml:"activity_basis"`

	DirectMaterialsPerUnit *decimal.Decimal `json:"direct_materials_per_unit" yaml:"direct_materials_per_unit"`
	DirectLabourPerUnit    *decimal.Decimal `json:"direct_labour_per_unit" yaml:"direct_labour_per_unit"`
	BudgetedOverheads      *decimal.Decimal `json:"budgeted_overheads" yaml:"budgeted_overheads"`
	BudgetedActivityLevel  *decimal.Decimal `json:"budgeted_activity_level" yaml:"budgeted_activity_level"`
	BudgetedUnits          *decimal.Decimal `json:"budgeted_units" yaml:"budgeted_units"`
	ActivityPerUnit        *decimal.Decimal `json:"activity_per_unit" yaml:"activity_per_unit"`
	ClosingInventoryUnits  *decimal.Decimal `json:"closing_inventory_units" yaml:"closing_inventory_units"`
	ActualOverheads        *decimal.Decimal `json:"actual_overheads" yaml:"actual_overheads"`
	ActualActivityLevel    *decimal.Decimal `json:"actual_activity_level" yaml:"actual_activity_level"`
	ActualUnits            *decimal.Decimal `json:"actual_units" yaml:"actual_units"`
}

// figures maps input keys to the file's optional values
func (f *File) figures() map[string]**decimal.Decimal {
	return map[string]**decimal.Decimal{
		"direct_materials_per_unit": &f.DirectMaterialsPerUnit,
		"direct_labour_per_unit":    &f.DirectLabourPerUnit,
		"budgeted_overheads":        &f.BudgetedOverheads,
		"budgeted_activity_level":   &f.BudgetedActivityLevel,
		"budgeted_units":            &f.BudgetedUnits,
		"activity_per_unit":         &f.ActivityPerUnit,
		"closing_inventory_units":   &f.ClosingInventoryUnits,
		"actual_overheads":          &f.ActualOverheads,
		"actual_activity_level":     &f.ActualActivityLevel,
		"actual_units":              &f.ActualUnits,
	}
}

// hclFile holds the string attributes; every other attribute is a figure
type hclFile struct {
	Name          string   `hcl:"name,optional"`
	Currency      string   `hcl:"currency,optional"`
	ActivityBasis string   `hcl:"activity_basis,optional"`
	Figures       hcl.Body `hcl:",remain"`
}

// Load reads and parses a scenario file
func Load(path string, defaults types.Inputs, currency types.Currency) (*Scenario, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("read scenario", err).WithContext("path", path)
	}

	s, err := Parse(data, format, path, defaults, currency)
	if err != nil {
		return nil, err
	}
	s.Source = path
	return s, nil
}

// Parse decodes data in the given format. filename is only used in diagnostics.
func Parse(data []byte, format Format, filename string, defaults types.Inputs, currency types.Currency) (*Scenario, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Parsing("decode json scenario", err).WithContext("path", filename)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Parsing("decode yaml scenario", err).WithContext("path", filename)
		}
	case FormatHCL:
		if err := decodeHCL(data, filename, &f); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NotSupported("scenario format " + string(format))
	}

	return f.Scenario(defaults, currency)
}

func decodeHCL(data []byte, filename string, f *File) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.Parsing("parse hcl scenario", diags).WithContext("path", filename)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, &hcl.EvalContext{}, &raw); diags.HasErrors() {
		return errors.Parsing("decode hcl scenario", diags).WithContext("path", filename)
	}
	f.Name, f.Currency, f.ActivityBasis = raw.Name, raw.Currency, raw.ActivityBasis

	attrs, diags := raw.Figures.JustAttributes()
	if diags.HasErrors() {
		return errors.Parsing("decode hcl scenario", diags).WithContext("path", filename)
	}

	figures := f.figures()
	for _, name := range determinism.SortedKeys(map[string]*hcl.Attribute(attrs)) {
		attr := attrs[name]
		dst, ok := figures[name]
		if !ok {
			return errors.Newf(errors.TypeParsing, "unsupported attribute %q", name).
				WithContext("path", filename).
				WithContext("range", attr.NameRange.String())
		}
		v, err := hclNumber(attr)
		if err != nil {
			return err.WithContext("path", filename)
		}
		*dst = &v
	}
	return nil
}

// hclNumber evaluates attr to an exact decimal
func hclNumber(attr *hcl.Attribute) (decimal.Decimal, *errors.Error) {
	val, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() {
		return decimal.Zero, errors.Parsing("evaluate "+attr.Name, diags)
	}

	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return decimal.Zero, errors.Parsing(attr.Name+" must be a number", err).
			WithContext("range", attr.Range.String())
	}
	if num.IsNull() || !num.IsKnown() {
		return decimal.Zero, errors.Newf(errors.TypeParsing, "%s must be a known number", attr.Name).
			WithContext("range", attr.Range.String())
	}

	d, err := decimal.NewFromString(num.AsBigFloat().Text('f', -1))
	if err != nil {
		return decimal.Zero, errors.Parsing(attr.Name+" must be finite", err)
	}
	return d, nil
}

// Scenario overlays the file's values on defaults
func (f *File) Scenario(defaults types.Inputs, currency types.Currency) (*Scenario, error) {
	in := defaults

	if f.ActivityBasis != "" {
		basis, err := types.ParseActivityBasis(f.ActivityBasis)
		if err != nil {
			return nil, err
		}
		in.ActivityBasis = basis
	}

	figures := f.figures()
	for _, key := range determinism.SortedKeys(figures) {
		if v := *figures[key]; v != nil {
			if err := in.Set(key, *v); err != nil {
				return nil, err
			}
		}
	}

	if f.Currency != "" {
		c, err := types.ParseCurrency(f.Currency)
		if err != nil {
			return nil, err
		}
		currency = c
	}

	return &Scenario{
		Name:     f.Name,
		Currency: currency,
		Inputs:   in,
	}, nil
}
