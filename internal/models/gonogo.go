package models

import "time"

// GoNoGoGameType identifies this test variant and its version in exported records.
const GoNoGoGameType = "waitroom_go_nogo_v1"

// GoNoGoResult is the summary record of a go/no-go session.
type GoNoGoResult struct {
	UserID            string    `json:"user_id" yaml:"user_id"`
	GameType          string    `json:"game_type" yaml:"game_type"`
	Timestamp         time.Time `json:"timestamp" yaml:"timestamp"`
	RoundsTotal       int       `json:"rounds_total" yaml:"rounds_total"`
	RoundsCompleted   int       `json:"rounds_completed" yaml:"rounds_completed"`
	AvgReactionTimeMs int       `json:"avg_reaction_time_ms" yaml:"avg_reaction_time_ms"`
	AccuracyRate      float64   `json:"accuracy_rate" yaml:"accuracy_rate"`
	FalseClicks       int       `json:"false_clicks" yaml:"false_clicks"`
	Hits              int       `json:"hits" yaml:"hits"`
	Misses            int       `json:"misses" yaml:"misses"`
	ReactionTimesMs   []int     `json:"reaction_times_ms" yaml:"reaction_times_ms"`
}

// Trial outcomes recorded in the per-trial log.
const (
	OutcomeHit        = "hit"
	OutcomeMiss       = "miss"
	OutcomeCommission = "commission"
	OutcomeWithheld   = "withheld"
)

// TrialRecord is one concluded trial. ReactionTimeMs is set for hits only.
type TrialRecord struct {
	Round          int    `json:"round" yaml:"round"`
	TrialType      string `json:"trial_type" yaml:"trial_type"`
	Outcome        string `json:"outcome" yaml:"outcome"`
	ReactionTimeMs *int   `json:"reaction_time_ms,omitempty" yaml:"reaction_time_ms,omitempty"`
	EarlyClicks    int    `json:"early_clicks" yaml:"early_clicks"`
}
