package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Container накапливает huma-мидлвари для очередной группы операций
type Container struct {
	huma.Middlewares
}

func NewContainer() *Container {
	return &Container{
		Middlewares: make(huma.Middlewares, 0),
	}
}

func (mc *Container) Add(middlewares ...func(ctx huma.Context, next func(huma.Context))) {
	mc.Middlewares = append(mc.Middlewares, middlewares...)
}

// GetAllAndClear отдает накопленные мидлвари и начинает новую группу
func (mc *Container) GetAllAndClear() huma.Middlewares {
	result := mc.Middlewares
	mc.Middlewares = nil
	return result
}
