package table

// Collection описывает таблицу, доступную через REST API
type Collection struct {
	Name string
	// SharedKey ключ в data, значение которого дает доступ к строке второму пользователю
	SharedKey string
	// ConflictKey ключ, по которому upsert находит существующую строку
	ConflictKey string
	// SharedWritable ключи data, которые может менять пользователь из SharedKey
	SharedWritable []string
	ReadOnly       bool
}

const (
	DietEntries     = "diet_entries"
	Meals           = "meals"
	Goals           = "goals"
	Messages        = "messages"
	Profiles        = "profiles"
	AIConversations = "ai_conversations"
	PhotoAnalyses   = "photo_analyses"
)

var collections = map[string]Collection{
	DietEntries:     {Name: DietEntries},
	Meals:           {Name: Meals},
	Goals:           {Name: Goals, ConflictKey: "goal_type"},
	Messages:        {Name: Messages, SharedKey: "receiver_id", SharedWritable: []string{"read"}},
	Profiles:        {Name: Profiles, ConflictKey: "user_id"},
	AIConversations: {Name: AIConversations},
	PhotoAnalyses:   {Name: PhotoAnalyses},
}

// Lookup возвращает описание таблицы по имени
func Lookup(name string) (Collection, error) {
	c, ok := collections[name]
	if !ok {
		return Collection{}, ErrUnknownTable
	}
	return c, nil
}
