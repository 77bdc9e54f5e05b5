package facility

import (
	"context"
	"errors"

	"hemapp/internal/domain/facility"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    facility.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service facility.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.nearbyOp(), h.nearby)
}

func (h *Handler) nearby(ctx context.Context, input *nearbyInput) (*nearbyOutput, error) {
	found, err := h.service.Nearby(ctx, input.Lat, input.Lon, input.RadiusKm, input.Kind, input.Limit)
	if err != nil {
		if errors.Is(err, facility.ErrInvalidLocation) || errors.Is(err, facility.ErrInvalidRadius) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.log.Error("nearby facilities", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	if found == nil {
		found = []facility.Facility{}
	}
	return &nearbyOutput{Body: found}, nil
}
