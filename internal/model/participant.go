package model

import (
	"strings"
	"time"
)

// ParticipantID uniquely identifies a participant across the system
type ParticipantID string

// Team is one of the three fixed teams a participant registers under.
// It is part of the participant's identity and never changes after creation.
type Team string

const (
	TeamBlue   Team = "blue"
	TeamYellow Team = "yellow"
	TeamRed    Team = "red"
)

// ParseTeam validates a team string at the boundary
func ParseTeam(s string) (Team, error) {
	switch Team(strings.ToLower(strings.TrimSpace(s))) {
	case TeamBlue:
		return TeamBlue, nil
	case TeamYellow:
		return TeamYellow, nil
	case TeamRed:
		return TeamRed, nil
	default:
		return "", ErrInvalidTeam
	}
}

// DisplayName returns the team's event-facing name
func (t Team) DisplayName() string {
	switch t {
	case TeamBlue:
		return "Sabiduría"
	case TeamYellow:
		return "Instinto"
	case TeamRed:
		return "Valor"
	default:
		return string(t)
	}
}

// Color returns the team's wheel segment color as a hex string
func (t Team) Color() string {
	switch t {
	case TeamBlue:
		return "#3b82f6"
	case TeamYellow:
		return "#facc15"
	case TeamRed:
		return "#ef4444"
	default:
		return "#999999"
	}
}

// Status is a participant's draw status
type Status string

const (
	StatusActive    Status = "active"
	StatusWinner    Status = "winner"
	StatusDiscarded Status = "discarded"
)

// ParseStatus validates a status string at the boundary
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusWinner:
		return StatusWinner, nil
	case StatusDiscarded:
		return StatusDiscarded, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Participant represents one registered attendee
type Participant struct {
	ID           ParticipantID
	Username     string
	Team         Team
	Status       Status
	RegisteredAt time.Time
}

// NormalizeUsername returns the case-insensitive comparison key for usernames
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Snapshot is an immutable, point-in-time copy of the registry,
// ordered by registration time ascending
type Snapshot []Participant

// Active returns the participants eligible for a draw, preserving order
func (s Snapshot) Active() []Participant {
	var active []Participant
	for _, p := range s {
		if p.Status == StatusActive {
			active = append(active, p)
		}
	}
	return active
}

// Stats summarizes a snapshot by status
type Stats struct {
	Total     int
	Active    int
	Winners   int
	Discarded int
}

// Stats computes status counts over the snapshot
func (s Snapshot) Stats() Stats {
	stats := Stats{Total: len(s)}
	for _, p := range s {
		switch p.Status {
		case StatusActive:
			stats.Active++
		case StatusWinner:
			stats.Winners++
		case StatusDiscarded:
			stats.Discarded++
		}
	}
	return stats
}
