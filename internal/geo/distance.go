package geo

import (
	"fmt"
	"math"

	"github.com/antonD24/ELDI/internal/models"
)

// EarthRadiusKm - радиус Земли в км
const EarthRadiusKm = 6371.0

// Distance возвращает расстояние по большому кругу между двумя точками в км.
// Второе значение false, если одна из точек отсутствует.
func Distance(from, to *models.Location) (float64, bool) {
	if from == nil || to == nil {
		return 0, false
	}
	return haversine(from.Lat, from.Long, to.Lat, to.Long), true
}

// FormatDistance форматирует расстояние: метры без дробной части до 1 км, иначе км с одним знаком
func FormatDistance(km float64) string {
	if m := math.Round(km * 1000); m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.1f km", km)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
