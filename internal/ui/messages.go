package ui

import (
	"time"

	"doppel/internal/eventbus"
	"doppel/internal/matcher"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// ResultsMsg carries a ranking snapshot from the match engine
type ResultsMsg struct {
	Results matcher.Results
}

// tickMsg is sent on a timer for retries and animations
type tickMsg time.Time

// logPagerMsg contains the result of a log pager command
type logPagerMsg struct {
	err error
}
