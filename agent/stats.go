package agent

import "github.com/nstehr/vimy/drone-core/model"

// TravelStats sums commanded travel distance by how loaded the unit was
// when it set off.
type TravelStats struct {
	Full    float64 // at or above the full ratio
	Empty   float64
	Partial float64
	Moves   int

	fullRatio float64
}

func newTravelStats(fullRatio float64) *TravelStats {
	return &TravelStats{fullRatio: fullRatio}
}

func (s *TravelStats) add(u model.Unit, dist float64) {
	s.Moves++
	switch {
	case u.IsEmpty():
		s.Empty += dist
	case u.FillRatio() >= s.fullRatio:
		s.Full += dist
	default:
		s.Partial += dist
	}
}

// Total is the distance travelled across all buckets.
func (s TravelStats) Total() float64 {
	return s.Full + s.Empty + s.Partial
}
