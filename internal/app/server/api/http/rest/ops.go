package rest

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) selectOp() huma.Operation {
	return huma.Operation{
		OperationID: "rest-select",
		Method:      http.MethodGet,
		Path:        "/rest/v1/{table}",
		Summary:     "Выборка строк таблицы",
		Tags:        []string{"rest"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) countOp() huma.Operation {
	return huma.Operation{
		OperationID: "rest-count",
		Method:      http.MethodGet,
		Path:        "/rest/v1/{table}/count",
		Summary:     "Число строк таблицы",
		Description: "Фильтры те же, что у выборки; limit не применяется.",
		Tags:        []string{"rest"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) insertOp() huma.Operation {
	return huma.Operation{
		OperationID:   "rest-insert",
		Method:        http.MethodPost,
		Path:          "/rest/v1/{table}",
		Summary:       "Вставка строки",
		Tags:          []string{"rest"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) upsertOp() huma.Operation {
	return huma.Operation{
		OperationID: "rest-upsert",
		Method:      http.MethodPut,
		Path:        "/rest/v1/{table}",
		Summary:     "Вставка или обновление строки",
		Description: "Существующая строка ищется по id в теле, затем по on_conflict или ключу таблицы по умолчанию.",
		Tags:        []string{"rest"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "rest-update",
		Method:      http.MethodPatch,
		Path:        "/rest/v1/{table}/{id}",
		Summary:     "Частичное обновление строки",
		Tags:        []string{"rest"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "rest-delete",
		Method:        http.MethodDelete,
		Path:          "/rest/v1/{table}/{id}",
		Summary:       "Удаление строки",
		Tags:          []string{"rest"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearer,
		Middlewares:   h.middleware,
	}
}
