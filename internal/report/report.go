package report

import (
	"encoding/json"
	"os"
	"time"
)

// TreasureReport summarizes one treasure dump run across a set of zones.
type TreasureReport struct {
	SourceDir   string        `json:"sourceDir"`
	SourceHash  string        `json:"sourceHash,omitempty"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Zones       []ZoneSummary `json:"zones"`
}

// ZoneSummary is the per-zone roll-up shown in the report tables.
type ZoneSummary struct {
	Group      string `json:"group"`
	Zone       string `json:"zone"`
	Chests     int    `json:"chests"`
	Respawning int    `json:"respawning"`
}

// TotalChests sums the chest counts of every zone in the report.
func (r TreasureReport) TotalChests() int {
	total := 0
	for _, z := range r.Zones {
		total += z.Chests
	}
	return total
}

// TotalRespawning sums the respawning chest counts of every zone.
func (r TreasureReport) TotalRespawning() int {
	total := 0
	for _, z := range r.Zones {
		total += z.Respawning
	}
	return total
}

func SaveTreasureJSON(rep TreasureReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadTreasureJSON(path string) (TreasureReport, error) {
	var rep TreasureReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
