package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"shiftpay/internal/domain"
)

// WorkInfosResource groups the calls under /api/workInfos
type WorkInfosResource struct {
	client *Client
}

func (r *WorkInfosResource) Fetch(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "workInfos", nil, nil)
}

// Create registers pay rates for a workplace
func (r *WorkInfosResource) Create(ctx context.Context, workplace string, payRates []float64) (json.RawMessage, error) {
	if payRates == nil {
		payRates = []float64{}
	}
	return r.client.Do(ctx, http.MethodPost, "workInfos", nil, domain.WorkInfo{Workplace: workplace, PayRates: payRates})
}

// Delete removes one pay rate of workplace, or the whole workplace when payRate is nil
func (r *WorkInfosResource) Delete(ctx context.Context, workplace string, payRate *float64) (json.RawMessage, error) {
	query := url.Values{"workplace": {workplace}}
	if payRate != nil {
		query.Set("payRate", strconv.FormatFloat(*payRate, 'f', -1, 64))
	}
	return r.client.Do(ctx, http.MethodDelete, "workInfos/"+url.PathEscape(workplace), query, nil)
}
