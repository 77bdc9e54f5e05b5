package facility

import "context"

type Repository interface {
	// Within возвращает учреждения внутри прямоугольника; пустой kind не фильтрует по типу
	Within(ctx context.Context, b Bounds, kind string) ([]Facility, error)
}
