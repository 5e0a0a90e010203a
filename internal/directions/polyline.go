package directions

import "backend-laufcoach/internal/geo"

// DecodePolyline converts an encoded polyline into coordinates, following
// Google's encoded polyline algorithm at the standard 1e-5 precision.
func DecodePolyline(encoded string) []geo.Point {
	var points []geo.Point
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		shift, result := 0, 0
		for {
			if index >= len(encoded) {
				return points
			}
			b := int(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		// zigzag: an odd value encodes the negative delta ^(result >> 1)
		if result&1 != 0 {
			lat += ^(result >> 1)
		} else {
			lat += result >> 1
		}

		shift, result = 0, 0
		for {
			if index >= len(encoded) {
				return points
			}
			b := int(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		if result&1 != 0 {
			lng += ^(result >> 1)
		} else {
			lng += result >> 1
		}

		points = append(points, geo.Point{
			Lat: float64(lat) * 1e-5,
			Lng: float64(lng) * 1e-5,
		})
	}

	return points
}
