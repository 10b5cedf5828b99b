package response

import (
	"time"

	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/services/draw"
)

// Participant is the API representation of a registered participant
type Participant struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Team         string    `json:"team"`
	TeamName     string    `json:"team_name"`
	TeamColor    string    `json:"team_color"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ParticipantFromModel converts a model participant to its API representation
func ParticipantFromModel(p model.Participant) Participant {
	return Participant{
		ID:           string(p.ID),
		Username:     p.Username,
		Team:         string(p.Team),
		TeamName:     p.Team.DisplayName(),
		TeamColor:    p.Team.Color(),
		Status:       string(p.Status),
		RegisteredAt: p.RegisteredAt,
	}
}

// Snapshot is the full participant list plus aggregate counts
type Snapshot struct {
	Participants []Participant `json:"participants"`
	Stats        Stats         `json:"stats"`
}

// SnapshotFromModel converts a model snapshot to its API representation
func SnapshotFromModel(s model.Snapshot) Snapshot {
	participants := make([]Participant, len(s))
	for i, p := range s {
		participants[i] = ParticipantFromModel(p)
	}
	return Snapshot{
		Participants: participants,
		Stats:        StatsFromModel(s.Stats()),
	}
}

// Stats holds aggregate participant counts
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Winners   int `json:"winners"`
	Discarded int `json:"discarded"`
}

// StatsFromModel converts model stats to their API representation
func StatsFromModel(s model.Stats) Stats {
	return Stats{
		Total:     s.Total,
		Active:    s.Active,
		Winners:   s.Winners,
		Discarded: s.Discarded,
	}
}

// Spin is the outcome of a draw spin
type Spin struct {
	Participant    Participant `json:"participant"`
	Index          int         `json:"index"`
	PoolSize       int         `json:"pool_size"`
	TotalRotation  float64     `json:"total_rotation"`
	RevealDuration string      `json:"reveal_duration"`
}

// SpinFromSelection converts a draw selection to its API representation
func SpinFromSelection(sel *draw.Selection) Spin {
	return Spin{
		Participant:    ParticipantFromModel(sel.Participant),
		Index:          sel.Index,
		PoolSize:       sel.PoolSize,
		TotalRotation:  sel.TotalRotation,
		RevealDuration: sel.RevealDuration.String(),
	}
}

// DrawStatus describes the draw engine's current session
type DrawStatus struct {
	State              string       `json:"state"`
	Selected           *Participant `json:"selected,omitempty"`
	ProcessedThisRound int          `json:"processed_this_round"`
}

// DrawStatusFromModel converts an engine status to its API representation
func DrawStatusFromModel(st draw.Status) DrawStatus {
	resp := DrawStatus{
		State:              string(st.State),
		ProcessedThisRound: st.ProcessedThisRound,
	}
	if st.Selected != nil {
		p := ParticipantFromModel(*st.Selected)
		resp.Selected = &p
	}
	return resp
}

// Reset reports how many participants a round reset reactivated
type Reset struct {
	Reactivated int `json:"reactivated"`
}
