package rest

type tableInput struct {
	Table string `path:"table" example:"diet_entries" doc:"Имя таблицы"`
}

type selectInput struct {
	tableInput
	Filter []string `query:"filter,explode" example:"receiver_id=eq.42" doc:"Фильтр вида column=op.value, op одно из eq, neq, gt, gte, lt, lte"`
	Order  string   `query:"order" enum:"asc,desc" default:"desc" doc:"Порядок по created_at"`
	Limit  int      `query:"limit" minimum:"0" maximum:"1000" doc:"Максимум строк, по умолчанию 100"`
}

type countInput struct {
	tableInput
	Filter []string `query:"filter,explode" example:"read=eq.false"`
}

type countOutput struct {
	Body struct {
		Count int64 `json:"count" example:"3"`
	}
}

type insertInput struct {
	tableInput
	Body map[string]any
}

type upsertInput struct {
	tableInput
	OnConflict string `query:"on_conflict" example:"goal_type" doc:"Ключ data, по которому ищется существующая строка"`
	Body       map[string]any
}

type updateInput struct {
	tableInput
	ID   int64 `path:"id" example:"1"`
	Body map[string]any
}

type deleteInput struct {
	tableInput
	ID int64 `path:"id" example:"1"`
}

type rowOutput struct {
	Body map[string]any
}

type rowsOutput struct {
	Body []map[string]any
}
