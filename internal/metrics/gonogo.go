package metrics

import (
	"math"
	"time"

	"waitroom/internal/models"
)

// MaxReactionTimeMs is the ceiling applied to every recorded reaction time.
const MaxReactionTimeMs = 5000

// Stats holds the running counters of a go/no-go session.
type Stats struct {
	Hits          int
	Misses        int
	FalseClicks   int
	ReactionTimes []int
}

// RecordHit counts a hit together with its reaction time so the two never drift apart.
func (s *Stats) RecordHit(reactionTimeMs int) {
	s.Hits++
	s.ReactionTimes = append(s.ReactionTimes, reactionTimeMs)
}

// ClampReactionTime converts an elapsed duration to whole milliseconds within [0, MaxReactionTimeMs].
func ClampReactionTime(elapsed time.Duration) int {
	ms := elapsed.Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > MaxReactionTimeMs {
		return MaxReactionTimeMs
	}
	return int(ms)
}

// CalculateAverageReactionTime returns the mean reaction time rounded to the nearest millisecond.
func CalculateAverageReactionTime(s *Stats) int {
	if len(s.ReactionTimes) == 0 {
		return 0
	}

	var sum int
	for _, rt := range s.ReactionTimes {
		sum += rt
	}
	return int(math.Round(float64(sum) / float64(len(s.ReactionTimes))))
}

// CalculateAccuracyRate returns hits / (hits + misses) rounded to two decimals.
func CalculateAccuracyRate(s *Stats) float64 {
	resolved := s.Hits + s.Misses
	if resolved == 0 {
		return 0
	}
	return math.Round(float64(s.Hits)/float64(resolved)*100) / 100
}

func CalculateReactionTimeSD(s *Stats) float64 {
	if len(s.ReactionTimes) <= 1 {
		return 0
	}

	var sum float64
	for _, rt := range s.ReactionTimes {
		sum += float64(rt)
	}
	avg := sum / float64(len(s.ReactionTimes))

	var sumSquaredDiff float64
	for _, rt := range s.ReactionTimes {
		diff := float64(rt) - avg
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(s.ReactionTimes))
	return math.Sqrt(variance)
}

// AssembleResult builds the export record from the current counters.
// The reaction time slice is copied so later hits do not leak into a returned record.
func AssembleResult(s *Stats, roundsTotal, roundsCompleted int, userID string, at time.Time) models.GoNoGoResult {
	reactionTimes := make([]int, len(s.ReactionTimes))
	copy(reactionTimes, s.ReactionTimes)

	return models.GoNoGoResult{
		UserID:            userID,
		GameType:          models.GoNoGoGameType,
		Timestamp:         at.UTC().Truncate(time.Millisecond),
		RoundsTotal:       roundsTotal,
		RoundsCompleted:   roundsCompleted,
		AvgReactionTimeMs: CalculateAverageReactionTime(s),
		AccuracyRate:      CalculateAccuracyRate(s),
		FalseClicks:       s.FalseClicks,
		Hits:              s.Hits,
		Misses:            s.Misses,
		ReactionTimesMs:   reactionTimes,
	}
}
