package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/portfolio"
)

const maxBodyBytes = 1 << 20

// PlanRequest is the body of POST /v1/plan and /v1/score. With no debts the
// configured portfolio is used and the other fields override it.
type PlanRequest struct {
	Debts          []model.Debt           `json:"debts,omitempty"`
	Fundings       []model.OneTimeFunding `json:"fundings,omitempty"`
	Strategy       string                 `json:"strategy,omitempty"`
	MonthlyBudget  *decimal.Decimal       `json:"monthly_budget,omitempty"`
	Anchor         time.Time              `json:"anchor,omitempty"`
	Horizon        int                    `json:"horizon,omitempty"`
	OnTimePayments int                    `json:"on_time_payments,omitempty"`
	TotalPayments  int                    `json:"total_payments,omitempty"`
	IncludeLedgers bool                   `json:"include_ledgers,omitempty"`
}

// PlanResponse is returned by POST /v1/plan.
type PlanResponse struct {
	Strategy        string                      `json:"strategy"`
	Requested       string                      `json:"requested_strategy"`
	FellBack        bool                        `json:"fell_back"`
	Anchor          time.Time                   `json:"anchor"`
	Order           []string                    `json:"order"`
	Summary         model.PlanSummary           `json:"summary"`
	Redistributions []model.RedistributionEvent `json:"redistributions"`
	UnspentFunding  decimal.Decimal             `json:"unspent_funding"`
	Warnings        []string                    `json:"warnings,omitempty"`
}

// StrategyScore is one entry of a ScoreResponse.
type StrategyScore struct {
	Strategy string            `json:"strategy"`
	Summary  model.PlanSummary `json:"summary"`
	Score    model.Score       `json:"score"`
}

// ScoreResponse is returned by POST /v1/score.
type ScoreResponse struct {
	Baseline   model.PlanSummary `json:"baseline"`
	Strategies []StrategyScore   `json:"strategies"`
	Best       string            `json:"best"`
}

type errorResponse struct {
	Error     string   `json:"error"`
	Problems  []string `json:"problems,omitempty"`
	Budget    string   `json:"budget,omitempty"`
	Minimums  string   `json:"minimums,omitempty"`
	Shortfall string   `json:"shortfall,omitempty"`
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	body, req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := pipeline.Run(req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPlanResponse(res, body.IncludeLedgers))
}

// NewPlanResponse converts a plan run into its JSON form. The CLI uses it for
// --json output as well.
func NewPlanResponse(res *pipeline.Result, includeLedgers bool) PlanResponse {
	resp := PlanResponse{
		Strategy:        res.Ordering.Strategy.String(),
		Requested:       res.Ordering.Requested,
		FellBack:        res.Ordering.FellBack,
		Anchor:          res.Anchor,
		Order:           res.Ordering.IDs,
		Summary:         res.Summary,
		Redistributions: res.Allocation.Events,
		UnspentFunding:  res.Allocation.UnspentFunding,
		Warnings:        res.Warnings(),
	}
	if !includeLedgers {
		resp.Summary = withoutLedgers(resp.Summary)
	}
	return resp
}

func (s *Service) handleScore(w http.ResponseWriter, r *http.Request) {
	_, req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	c, err := pipeline.Compare(req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewScoreResponse(c))
}

// NewScoreResponse converts a strategy comparison into its JSON form.
func NewScoreResponse(c *pipeline.Comparison) ScoreResponse {
	resp := ScoreResponse{
		Baseline: withoutLedgers(c.Baseline.Summary),
		Best:     c.BestRun().Result.Summary.Strategy,
	}
	for _, run := range c.Runs {
		resp.Strategies = append(resp.Strategies, StrategyScore{
			Strategy: run.Result.Summary.Strategy,
			Summary:  withoutLedgers(run.Result.Summary),
			Score:    run.Score,
		})
	}
	return resp
}

// decodeRequest parses the body and merges it with the configured portfolio.
// It writes the error response itself and returns ok=false on failure.
func (s *Service) decodeRequest(w http.ResponseWriter, r *http.Request) (PlanRequest, pipeline.Request, bool) {
	var body PlanRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return body, pipeline.Request{}, false
	}

	var req pipeline.Request
	if len(body.Debts) == 0 {
		if s.cfg.Source == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no debts given and no portfolio configured"})
			return body, req, false
		}
		base, err := s.cfg.Source()
		if err != nil {
			writeError(w, err)
			return body, req, false
		}
		req = base
	} else {
		p := portfolio.Portfolio{
			Debts:          body.Debts,
			Fundings:       body.Fundings,
			OnTimePayments: body.OnTimePayments,
			TotalPayments:  body.TotalPayments,
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			writeError(w, err)
			return body, req, false
		}
		req = pipeline.Request{
			Debts:          p.Debts,
			Fundings:       p.Fundings,
			Strategy:       "avalanche",
			MonthlyBudget:  engine.MinimumTotal(p.Debts),
			OnTimePayments: p.OnTimePayments,
			TotalPayments:  p.TotalPayments,
		}
	}

	if body.Strategy != "" {
		req.Strategy = body.Strategy
	}
	if body.MonthlyBudget != nil {
		req.MonthlyBudget = body.MonthlyBudget.Round(2)
	}
	if !body.Anchor.IsZero() {
		req.Anchor = body.Anchor
	}
	if body.Horizon > 0 {
		req.Horizon = body.Horizon
	}
	return body, req, true
}

func writeError(w http.ResponseWriter, err error) {
	var (
		unfundable *engine.UnfundableError
		invalid    *portfolio.ValidationError
	)
	switch {
	case errors.As(err, &unfundable):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     engine.ErrUnfundablePlan.Error(),
			Budget:    unfundable.Budget.StringFixed(2),
			Minimums:  unfundable.Minimums.StringFixed(2),
			Shortfall: unfundable.Shortfall().StringFixed(2),
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid portfolio", Problems: invalid.Problems})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func withoutLedgers(sum model.PlanSummary) model.PlanSummary {
	debts := make([]model.DebtSummary, len(sum.Debts))
	for i, d := range sum.Debts {
		d.Ledger = nil
		debts[i] = d
	}
	sum.Debts = debts
	return sum
}
