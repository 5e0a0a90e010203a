package session

// METForPace maps average pace (min/km) to a metabolic equivalent. Slower
// pace means lower intensity, so MET decreases as pace grows.
func METForPace(pace float64) float64 {
	switch {
	case pace >= 9:
		return 6
	case pace >= 8:
		return 7
	case pace >= 7:
		return 8
	case pace >= 6:
		return 9
	case pace >= 5:
		return 10
	case pace > 4.5:
		return 11
	default:
		return 12
	}
}

// CaloriesKcal estimates burned energy from MET, body weight and elapsed
// time.
func CaloriesKcal(met, weightKg float64, durationSec int) float64 {
	return met * weightKg * (float64(durationSec) / 3600)
}

// PaceMinPerKm guards against divide-by-zero: pace is 0 until there is
// distance.
func PaceMinPerKm(durationSec int, distanceKm float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return (float64(durationSec) / 60) / distanceKm
}
