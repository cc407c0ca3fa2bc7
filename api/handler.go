// Package api - HTTP handlers for valuation and single calculations.
// Handlers contain no calculation logic; everything is delegated to core packages.
package api

import (
	"bytes"
	"net/http"
	"strings"

	"inventory-valuation/adapters/scenario"
	"inventory-valuation/core/cost"
	"inventory-valuation/core/determinism"
	"inventory-valuation/core/engine"
	"inventory-valuation/core/explanation"
	"inventory-valuation/core/output"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

// handleValuation handles POST /v1/valuation
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sc, err := scenario.Parse(body, scenario.FormatJSON, "request", s.config.Valuation.Defaults, s.config.Valuation.Currency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := output.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		format = output.Format(strings.ToLower(f))
	}
	formatter, err := s.engine.Formats().Get(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := output.Options{}
	if opts.ShowFormulas, err = queryBool(r, "formulas", s.config.Output.ShowFormulas); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.ShowNotes, err = queryBool(r, "notes", s.config.Output.ShowNotes); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.engine.Valuate(r.Context(), engine.Request{
		Inputs:    sc.Inputs,
		Currency:  sc.Currency,
		Title:     sc.Name,
		Options:   &opts,
		Source:    "api",
		RequestID: requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := formatter.Render(&buf, report); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", formatter.ContentType())
	if format == output.FormatXLSX || format == output.FormatPDF {
		w.Header().Set("Content-Disposition", `attachment; filename="valuation.`+string(format)+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleOAR handles POST /v1/oar
func (s *Server) handleOAR(w http.ResponseWriter, r *http.Request) {
	var req OARRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	basis, err := types.ParseActivityBasis(req.ActivityBasis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := nonNegative(map[string]bool{
		"budgeted_overheads":      req.BudgetedOverheads.IsNegative(),
		"budgeted_activity_level": req.BudgetedActivityLevel.IsNegative(),
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	oar, err := cost.OverheadAbsorptionRate(req.BudgetedOverheads, req.BudgetedActivityLevel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, OARResponse{
		OverheadAbsorptionRate: oar,
		ActivityBasis:          basis,
		Unit:                   basis.Unit(),
		Display:                s.config.Valuation.Currency.Format(oar) + " per " + basis.Unit(),
	}, http.StatusOK)
}

// handleAbsorption handles POST /v1/absorption
func (s *Server) handleAbsorption(w http.ResponseWriter, r *http.Request) {
	var req AbsorptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := nonNegative(map[string]bool{
		"actual_activity_level":    req.ActualActivityLevel.IsNegative(),
		"overhead_absorption_rate": req.OverheadAbsorptionRate.IsNegative(),
		"actual_overheads":         req.ActualOverheads.IsNegative(),
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	a := cost.AbsorptionVariance(req.ActualActivityLevel, req.OverheadAbsorptionRate, req.ActualOverheads)
	finding := explanation.AbsorptionFinding(a, s.config.Valuation.Currency)

	s.writeJSON(w, AbsorptionResponse{
		Absorption: a,
		Nature:     finding.Nature,
		Finding:    finding.Title + ". " + finding.Detail,
	}, http.StatusOK)
}

// handleVariance handles POST /v1/variance
func (s *Server) handleVariance(w http.ResponseWriter, r *http.Request) {
	var req VarianceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := nonNegative(map[string]bool{
		"budgeted_overheads": req.BudgetedOverheads.IsNegative(),
		"actual_overheads":   req.ActualOverheads.IsNegative(),
		"budgeted_units":     req.BudgetedUnits.IsNegative(),
		"actual_units":       req.ActualUnits.IsNegative(),
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := cost.VarianceDecomposition(req.BudgetedOverheads, req.ActualOverheads, req.BudgetedUnits, req.ActualUnits)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := VarianceResponse{Decomposition: d, Total: d.Total()}
	if req.OverUnderAbsorption != nil {
		rec := cost.Reconcile(d, *req.OverUnderAbsorption)
		resp.Reconciliation = &rec
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleBases handles GET /v1/bases
func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	defaultBasis := s.config.Valuation.Defaults.ActivityBasis
	bases := make([]BasisInfo, 0, len(types.AllBases()))
	for _, b := range types.AllBases() {
		bases = append(bases, BasisInfo{
			Basis:         b,
			Label:         b.Label(),
			Unit:          b.Unit(),
			Justification: b.Justification(),
			Default:       b == defaultBasis,
		})
	}
	s.writeJSON(w, map[string]interface{}{
		"bases": bases,
		"count": len(bases),
	}, http.StatusOK)
}

// nonNegative reports every flagged field as an input error
func nonNegative(negative map[string]bool) error {
	var fields []string
	for _, name := range determinism.SortedKeys(negative) {
		if negative[name] {
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return errors.Newf(errors.TypeInput, "inputs must not be negative: %s", strings.Join(fields, ", ")).
		WithContext("fields", fields)
}
