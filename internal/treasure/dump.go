package treasure

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CerulanLumina/ff12tza-utils/internal/common"
	"github.com/CerulanLumina/ff12tza-utils/internal/gamedata"
)

// DumpOptions configures a treasure dump over a directory of zone files.
type DumpOptions struct {
	InputDir  string
	OutputDir string // empty means write reports to stdout
	Treasure  *gamedata.TreasureTable
	Items     *gamedata.ItemTable
	Maps      bool // write an SVG chest map next to each zone report
}

// ZoneDump is the decoded treasure contents of one zone file.
type ZoneDump struct {
	Stem    string
	Group   string
	Zone    gamedata.Zone
	Records []Record
}

type slotBinding struct {
	Group string
	Zone  string
	ID    uint32
	Item  string
}

// Dump walks InputDir for .ebp zone files, decodes the treasure records of
// every zone known to the reference table, and writes per-zone reports
// grouped by area plus a respawn-slot cross reference. Zones that fail to
// read are logged and skipped; the dump itself only fails on setup errors.
func Dump(opts DumpOptions) ([]ZoneDump, error) {
	if _, err := os.Stat(opts.InputDir); err != nil {
		return nil, err
	}
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, err
		}
	}

	var paths []string
	err := filepath.WalkDir(opts.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				return nil
			}
		}
		if strings.EqualFold(filepath.Ext(path), ".ebp") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slots := make([][]slotBinding, 256)
	var dumps []ZoneDump
	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		zone, known := opts.Treasure.Zone(stem)
		if !known {
			continue
		}
		group := opts.Treasure.Group(stem)
		records, err := readZoneFile(path, zone)
		if err != nil {
			common.Logf("zone %s (%s): %v", stem, zone.Name, err)
			continue
		}
		dump := ZoneDump{Stem: stem, Group: group, Zone: zone, Records: records}
		dumps = append(dumps, dump)

		for _, record := range records {
			if record.RespawnSlot == 0xFF {
				continue
			}
			slots[record.RespawnSlot] = append(slots[record.RespawnSlot], slotBinding{
				Group: group,
				Zone:  zone.Name,
				ID:    record.ID,
				Item:  opts.Items.Name(record.FirstItem),
			})
		}

		if err := writeZoneOutputs(opts, dump); err != nil {
			common.Logf("zone %s (%s): %v", stem, zone.Name, err)
		}
	}

	if err := writeSlotReport(opts.OutputDir, slots); err != nil {
		return dumps, err
	}
	return dumps, nil
}

func readZoneFile(path string, zone gamedata.Zone) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f, zone.Offset, int(zone.Quantity))
}

func writeZoneOutputs(opts DumpOptions, dump ZoneDump) error {
	if opts.OutputDir == "" {
		return writeZoneReport(os.Stdout, opts.Items, dump)
	}
	groupDir := filepath.Join(opts.OutputDir, dump.Group)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return err
	}
	reportPath := filepath.Join(groupDir, dump.Zone.Name+".txt")
	f, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	if err := writeZoneReport(f, opts.Items, dump); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if opts.Maps {
		svgPath := filepath.Join(groupDir, dump.Zone.Name+".svg")
		m, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		if err := WriteMap(m, dump.Zone.Name, dump.Records); err != nil {
			m.Close()
			return err
		}
		return m.Close()
	}
	return nil
}

func writeZoneReport(w io.Writer, items *gamedata.ItemTable, dump ZoneDump) error {
	if _, err := fmt.Fprintln(w, dump.Zone.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t%-3s%-6s%-6s%-6s%-6s%-20s%-20s%-20s%-20s%-5s%6s%6s\n",
		"ID", "Slot", "Spn%", "Gil%", "Gil", "Item 1 (50%)", "Item 2 (50%)", "DA 1 (95%)", "DA 2 (5%)", "DGil", "X", "Y"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t%s\n", strings.Repeat("=", 124)); err != nil {
		return err
	}
	for _, record := range dump.Records {
		if _, err := fmt.Fprintf(w, "\t%-3d%-6x%-6d%-6d%-6d%-20s%-20s%-20s%-20s%-5d%6d%6d\n",
			record.ID,
			record.RespawnSlot,
			record.SpawnChance,
			record.GilChance,
			record.GilAmount,
			items.Name(record.FirstItem),
			items.Name(record.SecondItem),
			items.Name(record.RareFirstItem),
			items.Name(record.RareSecondItem),
			record.RareGilAmount,
			record.PosX,
			record.PosY,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeSlotReport(outputDir string, slots [][]slotBinding) error {
	var w io.Writer = os.Stdout
	if outputDir != "" {
		f, err := os.Create(filepath.Join(outputDir, "respawn-slots.txt"))
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := fmt.Fprintln(w, "Slot => [(Area: Zone :: ID = Item), (...), ...]"); err != nil {
		return err
	}
	for slot, bindings := range slots {
		if slot == 0xFF {
			continue
		}
		parts := make([]string, 0, len(bindings))
		for _, b := range bindings {
			parts = append(parts, fmt.Sprintf("(%s: %s :: %d = %s)", b.Group, b.Zone, b.ID, b.Item))
		}
		if _, err := fmt.Fprintf(w, "%02x => [%s]\n", slot, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}
