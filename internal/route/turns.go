package route

import (
	"fmt"
	"math"

	"backend-laufcoach/internal/geo"
)

const (
	// DefaultMinTurnAngle is the bearing change below which a vertex does not
	// count as a turn.
	DefaultMinTurnAngle = 30.0

	turnMinDistanceM = 20.0
	turnMaxDistanceM = 200.0
)

// Turn is a route vertex where the bearing changes by at least the threshold.
// Angle is signed: positive turns right, negative turns left.
type Turn struct {
	Index int
	Angle float64
}

// DetectTurns precomputes the turning points of a route. The angle between
// the incoming and outgoing bearing is normalized to (-180, 180].
func DetectTurns(route []geo.Point, minAngle float64) []Turn {
	var turns []Turn
	for i := 1; i < len(route)-1; i++ {
		before := geo.BearingDegrees(route[i-1], route[i])
		after := geo.BearingDegrees(route[i], route[i+1])
		angle := normalizeAngle(after - before)
		if math.Abs(angle) >= minAngle {
			turns = append(turns, Turn{Index: i, Angle: angle})
		}
	}
	return turns
}

func normalizeAngle(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// NextTurn returns the first turn past lastProcessed whose distance from pos
// lies in the announcement band, or false when none qualifies.
func NextTurn(pos geo.Point, route []geo.Point, turns []Turn, lastProcessed int) (Turn, float64, bool) {
	for _, turn := range turns {
		if turn.Index <= lastProcessed {
			continue
		}
		d := geo.DistanceMeters(pos, route[turn.Index])
		if d >= turnMinDistanceM && d <= turnMaxDistanceM {
			return turn, d, true
		}
	}
	return Turn{}, 0, false
}

// InstructionFor maps a signed turn angle to a spoken instruction.
func InstructionFor(angle float64) string {
	abs := math.Abs(angle)
	right := angle > 0

	switch {
	case abs >= 150:
		return "Wende dich um"
	case abs >= 90 && right:
		return "Scharf rechts abbiegen"
	case abs >= 90:
		return "Scharf links abbiegen"
	case abs >= 45 && right:
		return "Rechts abbiegen"
	case abs >= 45:
		return "Links abbiegen"
	case right:
		return "Leicht rechts halten"
	default:
		return "Leicht links halten"
	}
}

// FormatTurnAnnouncement phrases the distance precisely under 50 m and
// approximately up to 100 m. Beyond that the turn is not announced yet.
func FormatTurnAnnouncement(instruction string, distanceM float64) (string, bool) {
	switch {
	case distanceM < 50:
		return fmt.Sprintf("In %d Metern: %s", int(math.Round(distanceM)), instruction), true
	case distanceM <= 100:
		return fmt.Sprintf("In etwa %d Metern: %s", int(math.Round(distanceM/10)*10), instruction), true
	default:
		return "", false
	}
}
