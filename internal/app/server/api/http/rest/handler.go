package rest

import (
	"context"
	"encoding/json"
	"errors"

	"hemapp/internal/app/server/api/http/middleware/auth"
	"hemapp/internal/domain/table"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    table.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service table.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "rest_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.selectOp(), h.selectRows)
	huma.Register(api, h.countOp(), h.count)
	huma.Register(api, h.insertOp(), h.insert)
	huma.Register(api, h.upsertOp(), h.upsert)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) selectRows(ctx context.Context, input *selectInput) (*rowsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filters, err := table.ParseFilters(input.Filter)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	rows, err := h.service.Select(ctx, userID, input.Table, filters, input.Limit, input.Order == "asc")
	if err != nil {
		return nil, h.mapError(err)
	}

	records := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return &rowsOutput{Body: records}, nil
}

func (h *Handler) count(ctx context.Context, input *countInput) (*countOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filters, err := table.ParseFilters(input.Filter)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	n, err := h.service.Count(ctx, userID, input.Table, filters)
	if err != nil {
		return nil, h.mapError(err)
	}

	out := &countOutput{}
	out.Body.Count = n
	return out, nil
}

func (h *Handler) insert(ctx context.Context, input *insertInput) (*rowOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	data, err := json.Marshal(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid body")
	}

	row, err := h.service.Insert(ctx, userID, input.Table, data)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &rowOutput{Body: row.Record()}, nil
}

func (h *Handler) upsert(ctx context.Context, input *upsertInput) (*rowOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	data, err := json.Marshal(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid body")
	}

	row, err := h.service.Upsert(ctx, userID, input.Table, data, input.OnConflict)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &rowOutput{Body: row.Record()}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*rowOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	data, err := json.Marshal(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid body")
	}

	row, err := h.service.Update(ctx, userID, input.Table, input.ID, data)
	if err != nil {
		return nil, h.mapError(err)
	}
	return &rowOutput{Body: row.Record()}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*struct{}, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.Table, input.ID); err != nil {
		return nil, h.mapError(err)
	}
	return nil, nil
}

func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, table.ErrNotFound), errors.Is(err, table.ErrUnknownTable):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, table.ErrForbidden), errors.Is(err, table.ErrReadOnlyTable):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, table.ErrInvalidData), errors.Is(err, table.ErrInvalidFilter):
		return huma.Error400BadRequest(err.Error())
	}

	h.log.Error("table operation failed", "error", err)
	return huma.Error500InternalServerError("internal error")
}
