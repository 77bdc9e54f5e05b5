package facility

import "errors"

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidRadius   = errors.New("invalid radius")
)

// Facility медицинское учреждение
type Facility struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind" doc:"hospital, clinic, pharmacy, lab"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

// Bounds прямоугольник в градусах для предварительного отбора в базе
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}
