package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"shiftpay/internal/domain"
)

// ShiftsResource groups the calls under /api/shifts
type ShiftsResource struct {
	client *Client
}

// Fetch lists shifts, or fetches one when id is set. params become the query string.
func (r *ShiftsResource) Fetch(ctx context.Context, id string, params url.Values) (json.RawMessage, error) {
	resource := "shifts"
	if id != "" {
		resource += "/" + url.PathEscape(id)
	}
	return r.client.Do(ctx, http.MethodGet, resource, params, nil)
}

// Create posts one shift and returns the server's record
func (r *ShiftsResource) Create(ctx context.Context, shift *domain.Shift) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "shifts", nil, shift.ToDTO())
}

// CreateBatch posts several shifts at once and returns the server's records
func (r *ShiftsResource) CreateBatch(ctx context.Context, shifts []*domain.Shift) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "shifts/batch", nil, domain.ToDTOs(shifts))
}

// Update replaces the shift stored under id
func (r *ShiftsResource) Update(ctx context.Context, id string, shift *domain.Shift) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPut, "shifts/"+url.PathEscape(id), nil, shift.ToDTO())
}

// Delete removes one shift
func (r *ShiftsResource) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "shifts/"+url.PathEscape(id), nil, nil)
}

type deleteManyRequest struct {
	IDs []string `json:"ids"`
}

// DeleteMany removes the listed shifts
func (r *ShiftsResource) DeleteMany(ctx context.Context, ids []string) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "shifts", nil, deleteManyRequest{IDs: ids})
}

// DeleteAll removes every shift of the account
func (r *ShiftsResource) DeleteAll(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "shifts", nil, nil)
}
