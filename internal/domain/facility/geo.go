package facility

import "math"

const earthRadiusKm = 6371.0

// Haversine расстояние по большому кругу в километрах
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundsAround грубый прямоугольник, гарантированно содержащий круг радиуса radiusKm
func BoundsAround(lat, lon, radiusKm float64) Bounds {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi

	b := Bounds{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cos := math.Cos(radians(lat))
	if cos > 0.01 {
		dLon := dLat / cos
		if dLon < 180 {
			b.MinLon = lon - dLon
			b.MaxLon = lon + dLon
		}
	}

	return b
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
