// Package matching maps a source's leagues and fixtures onto canonical ones
// and records the mapping.
package matching

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when a raw league or fixture maps to nothing.
// The concrete error is a *NoMatchError carrying the reason.
var ErrNoMatch = errors.New("no match")

// Reason explains why a raw entity was not matched.
type Reason string

const (
	ReasonStale              Reason = "stale"
	ReasonLeagueNotOnboarded Reason = "league_not_onboarded"
	ReasonTeamUnresolved     Reason = "team_unresolved"
	ReasonNoCandidate        Reason = "no_candidate"
	ReasonCountryUnresolved  Reason = "country_unresolved"
	ReasonLeagueUnresolved   Reason = "league_unresolved"
	ReasonAlreadyMatched     Reason = "already_matched"
)

// NoMatchError is an ErrNoMatch with its reason and optional cause.
type NoMatchError struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *NoMatchError) Error() string {
	msg := fmt.Sprintf("no match (%s)", e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrNoMatch and the cause to errors.Is.
func (e *NoMatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNoMatch}
	}
	return []error{ErrNoMatch, e.Err}
}

func noMatch(reason Reason, detail string, cause error) error {
	return &NoMatchError{Reason: reason, Detail: detail, Err: cause}
}

// ReasonOf returns the reason of a no-match error, or "" for other errors.
func ReasonOf(err error) Reason {
	var nm *NoMatchError
	if errors.As(err, &nm) {
		return nm.Reason
	}
	return ""
}
