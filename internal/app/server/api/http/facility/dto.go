package facility

import "hemapp/internal/domain/facility"

type nearbyInput struct {
	Lat      float64 `query:"lat" minimum:"-90" maximum:"90" required:"true" example:"55.7558"`
	Lon      float64 `query:"lon" minimum:"-180" maximum:"180" required:"true" example:"37.6173"`
	RadiusKm float64 `query:"radius_km" minimum:"0" maximum:"200" doc:"Радиус поиска, по умолчанию 10 км"`
	Kind     string  `query:"kind" enum:"hospital,clinic,pharmacy,lab" doc:"Тип учреждения"`
	Limit    int     `query:"limit" minimum:"0" maximum:"100"`
}

type nearbyOutput struct {
	Body []facility.Facility
}
