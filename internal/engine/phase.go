package engine

import (
	"fmt"

	"waitroom/internal/metrics"
)

// Phase is the state of a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhaseWaiting   Phase = "waiting"
	PhaseStimulus  Phase = "stimulus"
	PhaseFinished  Phase = "finished"
)

// TrialType says whether clicking the stimulus is correct.
type TrialType string

const (
	TrialGo   TrialType = "go"
	TrialNoGo TrialType = "nogo"
)

// ClickOutcome is how a click was classified.
type ClickOutcome string

const (
	ClickIgnored    ClickOutcome = "ignored"
	ClickEarly      ClickOutcome = "early"
	ClickHit        ClickOutcome = "hit"
	ClickCommission ClickOutcome = "commission"
)

// event is the last thing that happened; it only feeds the status message.
type event int

const (
	eventNone event = iota
	eventStarted
	eventEarlyClick
	eventHit
	eventCommission
	eventMiss
	eventWithheld
)

func describe(phase Phase, last event, trialType TrialType, lastReactionMs int, stats *metrics.Stats) string {
	switch phase {
	case PhaseIdle:
		return "Press start to begin"
	case PhaseCountdown:
		return "Get ready..."
	case PhaseStimulus:
		if trialType == TrialNoGo {
			return "Don't click!"
		}
		return "Click now!"
	case PhaseFinished:
		return fmt.Sprintf("Finished! Average reaction time %d ms, accuracy %.0f%%",
			metrics.CalculateAverageReactionTime(stats), metrics.CalculateAccuracyRate(stats)*100)
	}

	switch last {
	case eventEarlyClick:
		return "Too early! Wait for the target."
	case eventHit:
		return fmt.Sprintf("Hit! %d ms", lastReactionMs)
	case eventCommission:
		return "That was a distractor, hold your click."
	case eventMiss:
		return "Missed, be quicker!"
	case eventWithheld:
		return "Well held."
	default:
		return "Wait for the target..."
	}
}
