package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/render"
)

type capacityRequest struct {
	Capacity json.Number `json:"capacity"`
}

type capacityResponse struct {
	Capacity  json.Number `json:"capacity"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Message   string      `json:"message,omitempty"`
}

type planResponse struct {
	render.PlanDocument
	CalculationTimeMs int64 `json:"calculationTimeMs,omitempty"`
}

type planRecordResponse struct {
	ID         string      `json:"id"`
	Source     string      `json:"source"`
	CreatedAt  time.Time   `json:"createdAt"`
	Capacity   json.Number `json:"capacity"`
	GroupCount int         `json:"groupCount"`
	BatchCount int         `json:"batchCount"`
}

type planListResponse struct {
	Plans []planRecordResponse `json:"plans"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type rowErrorResponse struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Error  string `json:"error"`
}

type errorResponse struct {
	Error      string             `json:"error"`
	Details    string             `json:"details,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`
	Rows       []rowErrorResponse `json:"rows,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return render.JSONNumber(d)
}

func newPlanResponse(plan planning.Plan) planResponse {
	return planResponse{PlanDocument: render.NewPlanDocument(plan)}
}
