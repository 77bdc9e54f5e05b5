package function

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) chatOp() huma.Operation {
	return huma.Operation{
		OperationID: "function-ai-chat",
		Method:      http.MethodPost,
		Path:        "/functions/v1/ai-chat",
		Summary:     "Диалог с ассистентом",
		Description: "Тело `{message, userId?}`. Ошибки, включая неразборчивое тело, отдаются как `{success:false,error}`.",
		Tags:        []string{"functions"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) analyzeOp() huma.Operation {
	return huma.Operation{
		OperationID: "function-analyze-photo",
		Method:      http.MethodPost,
		Path:        "/functions/v1/analyze-photo",
		Summary:     "Оценка калорийности блюда по фото",
		Description: "Тело `{imageUrl, userId?}`. Ошибки, включая неразборчивое тело, отдаются как `{success:false,error}`.",
		Tags:        []string{"functions"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
