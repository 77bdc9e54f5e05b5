package user

import "time"

type User struct {
	ID        int
	Login     string
	Password  string // хэш bcrypt
	CreatedAt time.Time
}

// Credentials логин и пароль из запросов регистрации и входа
type Credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"32" doc:"Логин пользователя"`
	Password string `json:"password" minLength:"8" maxLength:"72" doc:"Пароль пользователя"`
}
