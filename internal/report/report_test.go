package report

import (
	"path/filepath"
	"testing"
	"time"
)

func sampleReport() TreasureReport {
	return TreasureReport{
		SourceDir:   "battle_pack.bin.unpacked",
		SourceHash:  "a3f5c2",
		GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Zones: []ZoneSummary{
			{Group: "Giza Plains", Zone: "Crystal Glade", Chests: 4, Respawning: 2},
			{Group: "Rabanastre", Zone: "Lowtown", Chests: 9, Respawning: 0},
		},
	}
}

func TestTreasureReportTotals(t *testing.T) {
	rep := sampleReport()
	if got := rep.TotalChests(); got != 13 {
		t.Fatalf("TotalChests = %d, want 13", got)
	}
	if got := rep.TotalRespawning(); got != 2 {
		t.Fatalf("TotalRespawning = %d, want 2", got)
	}
}

func TestTreasureReportJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	rep := sampleReport()
	if err := SaveTreasureJSON(rep, path); err != nil {
		t.Fatalf("SaveTreasureJSON: %v", err)
	}
	got, err := LoadTreasureJSON(path)
	if err != nil {
		t.Fatalf("LoadTreasureJSON: %v", err)
	}
	if got.SourceDir != rep.SourceDir || got.SourceHash != rep.SourceHash {
		t.Fatalf("loaded = %+v", got)
	}
	if len(got.Zones) != len(rep.Zones) {
		t.Fatalf("zones = %d, want %d", len(got.Zones), len(rep.Zones))
	}
	for i := range rep.Zones {
		if got.Zones[i] != rep.Zones[i] {
			t.Fatalf("zone %d = %+v, want %+v", i, got.Zones[i], rep.Zones[i])
		}
	}
}

func TestSaveTreasurePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := SaveTreasurePDF(sampleReport(), path); err != nil {
		t.Fatalf("SaveTreasurePDF: %v", err)
	}
}

func TestSourceHashToQR(t *testing.T) {
	png, err := SourceHashToQR("ab:cd ef", 64)
	if err != nil {
		t.Fatalf("SourceHashToQR: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG output")
	}
	if _, err := SourceHashToQR("   ", 64); err == nil {
		t.Fatal("expected error for blank hash")
	}
	if _, err := SourceHashToQR("zz--!!", 64); err == nil {
		t.Fatal("expected error for hash with no hex digits")
	}
}

func TestSanitizeHash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "abcdef012345", want: "ABCDEF012345"},
		{in: "  AB cd:EF  ", want: "ABCDEF"},
		{in: "ghij", want: ""},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := sanitizeHash(tc.in); got != tc.want {
			t.Fatalf("sanitizeHash(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
