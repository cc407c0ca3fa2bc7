// Package api - Request and response types for the HTTP API.
// Amounts are decimals and encode as JSON strings.
package api

import (
	"github.com/shopspring/decimal"

	"inventory-valuation/core/types"
)

// OARRequest is the input to POST /v1/oar
type OARRequest struct {
	BudgetedOverheads     decimal.Decimal `json:"budgeted_overheads"`
	BudgetedActivityLevel decimal.Decimal `json:"budgeted_activity_level"`
	ActivityBasis         string          `json:"activity_basis,omitempty"`
}

// OARResponse is the output of POST /v1/oar
type OARResponse struct {
	OverheadAbsorptionRate decimal.Decimal     `json:"overhead_absorption_rate"`
	ActivityBasis          types.ActivityBasis `json:"activity_basis"`
	Unit                   string              `json:"unit"`
	Display                string              `json:"display"`
}

// AbsorptionRequest is the input to POST /v1/absorption
type AbsorptionRequest struct {
	ActualActivityLevel    decimal.Decimal `json:"actual_activity_level"`
	OverheadAbsorptionRate decimal.Decimal `json:"overhead_absorption_rate"`
	ActualOverheads        decimal.Decimal `json:"actual_overheads"`
}

// AbsorptionResponse is the output of POST /v1/absorption
type AbsorptionResponse struct {
	types.Absorption
	Nature  types.VarianceNature `json:"nature,omitempty"`
	Finding string               `json:"finding"`
}

// VarianceRequest is the input to POST /v1/variance.
// OverUnderAbsorption is optional; when present the response reconciles against it.
type VarianceRequest struct {
	BudgetedOverheads   decimal.Decimal  `json:"budgeted_overheads"`
	ActualOverheads     decimal.Decimal  `json:"actual_overheads"`
	BudgetedUnits       decimal.Decimal  `json:"budgeted_units"`
	ActualUnits         decimal.Decimal  `json:"actual_units"`
	OverUnderAbsorption *decimal.Decimal `json:"over_under_absorption,omitempty"`
}

// VarianceResponse is the output of POST /v1/variance
type VarianceResponse struct {
	types.Decomposition
	Total          decimal.Decimal       `json:"total"`
	Reconciliation *types.Reconciliation `json:"reconciliation,omitempty"`
}

// BasisInfo describes one activity basis
type BasisInfo struct {
	Basis         types.ActivityBasis `json:"basis"`
	Label         string              `json:"label"`
	Unit          string              `json:"unit"`
	Justification string              `json:"justification"`
	Default       bool                `json:"default"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error payload
type ErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Detail    string                 `json:"detail,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}
