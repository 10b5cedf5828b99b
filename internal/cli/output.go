package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Participant:
		o.printParticipant(v)
	case Snapshot:
		o.printSnapshot(v)
	case Stats:
		o.printStats(v)
	case Spin:
		o.printSpin(v)
	case DrawStatus:
		o.printDrawStatus(v)
	case Reset:
		o.printReset(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Participant response type (matches API)
type Participant struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Team         string `json:"team"`
	TeamName     string `json:"team_name"`
	TeamColor    string `json:"team_color"`
	Status       string `json:"status"`
	RegisteredAt string `json:"registered_at"`
}

// Snapshot response type
type Snapshot struct {
	Participants []Participant `json:"participants"`
	Stats        Stats         `json:"stats"`
}

// Stats response type
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Winners   int `json:"winners"`
	Discarded int `json:"discarded"`
}

// Spin response type
type Spin struct {
	Participant    Participant `json:"participant"`
	Index          int         `json:"index"`
	PoolSize       int         `json:"pool_size"`
	TotalRotation  float64     `json:"total_rotation"`
	RevealDuration string      `json:"reveal_duration"`
}

// DrawStatus response type
type DrawStatus struct {
	State              string       `json:"state"`
	Selected           *Participant `json:"selected,omitempty"`
	ProcessedThisRound int          `json:"processed_this_round"`
}

// Reset response type
type Reset struct {
	Reactivated int `json:"reactivated"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printParticipant(p Participant) {
	fmt.Printf("Participant: %s (%s)\n", p.Username, p.ID)
	fmt.Printf("Team: %s (%s)\n", p.TeamName, p.Team)
	fmt.Printf("Status: %s\n", p.Status)
	fmt.Printf("Registered: %s\n", p.RegisteredAt)
}

func (o *Output) printSnapshot(s Snapshot) {
	fmt.Printf("Participants (%d):\n", len(s.Participants))
	for _, p := range s.Participants {
		fmt.Printf("  - %s [%s] %s (%s)\n", p.Username, p.Status, p.TeamName, p.ID)
	}
	fmt.Println()
	o.printStats(s.Stats)
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Total: %d\n", s.Total)
	fmt.Printf("Active: %d\n", s.Active)
	fmt.Printf("Winners: %d\n", s.Winners)
	fmt.Printf("Discarded: %d\n", s.Discarded)
}

func (o *Output) printSpin(s Spin) {
	fmt.Printf("Selected: %s (%s)\n", s.Participant.Username, s.Participant.ID)
	fmt.Printf("Team: %s\n", s.Participant.TeamName)
	fmt.Printf("Segment: %d of %d\n", s.Index+1, s.PoolSize)
	fmt.Printf("Reveal: %s\n", s.RevealDuration)
}

func (o *Output) printDrawStatus(d DrawStatus) {
	fmt.Printf("State: %s\n", d.State)
	if d.Selected != nil {
		fmt.Printf("Selected: %s (%s)\n", d.Selected.Username, d.Selected.ID)
	}
	fmt.Printf("Decided this round: %d\n", d.ProcessedThisRound)
}

func (o *Output) printReset(r Reset) {
	fmt.Printf("Reactivated: %d\n", r.Reactivated)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
