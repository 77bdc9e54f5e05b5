package facility

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) nearbyOp() huma.Operation {
	return huma.Operation{
		OperationID: "facilities-nearby",
		Method:      http.MethodGet,
		Path:        "/api/facilities/nearby",
		Summary:     "Медицинские учреждения рядом",
		Description: "Сортировка по расстоянию от точки, ближайшие первыми.",
		Tags:        []string{"facilities"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
