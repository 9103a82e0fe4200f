package gamedata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Zone describes where a zone's treasure records live inside its .ebp file.
type Zone struct {
	Name     string
	Offset   int64
	Quantity uint16
}

// TreasureTable maps zone file stems to their zone metadata and area group.
type TreasureTable struct {
	zones   map[string]Zone
	groupOf map[string]string
}

// ItemTable maps item identifiers to display names.
type ItemTable struct {
	names map[uint16]string
}

type treasureJSON struct {
	Groups map[string][]string `json:"groups"`
	Zones  map[string]zoneJSON `json:"zones"`
}

type zoneJSON struct {
	Name     string `json:"name"`
	Offset   int64  `json:"offset"`
	Quantity uint16 `json:"quantity"`
}

type itemJSON struct {
	IDs map[string]string `json:"ids"`
}

func treasureFromJSON(file treasureJSON) (*TreasureTable, error) {
	table := &TreasureTable{
		zones:   make(map[string]Zone, len(file.Zones)),
		groupOf: make(map[string]string),
	}
	for stem, zone := range file.Zones {
		name := strings.TrimSpace(zone.Name)
		if name == "" {
			return nil, fmt.Errorf("zone %q: missing name", stem)
		}
		if zone.Offset < 0 {
			return nil, fmt.Errorf("zone %q: negative offset %d", stem, zone.Offset)
		}
		table.zones[stem] = Zone{Name: name, Offset: zone.Offset, Quantity: zone.Quantity}
	}
	for group, stems := range file.Groups {
		for _, stem := range stems {
			if prev, dup := table.groupOf[stem]; dup && prev != group {
				return nil, fmt.Errorf("zone %q assigned to groups %q and %q", stem, prev, group)
			}
			table.groupOf[stem] = group
		}
	}
	return table, nil
}

func itemsFromJSON(file itemJSON) (*ItemTable, error) {
	table := &ItemTable{names: make(map[uint16]string, len(file.IDs))}
	for key, name := range file.IDs {
		id, err := strconv.ParseUint(key, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("item id %q: %w", key, err)
		}
		table.names[uint16(id)] = strings.TrimSpace(name)
	}
	return table, nil
}

// Zone returns the zone metadata for a file stem.
func (t *TreasureTable) Zone(stem string) (Zone, bool) {
	if t == nil {
		return Zone{}, false
	}
	zone, ok := t.zones[stem]
	return zone, ok
}

// Group returns the area group a zone file stem belongs to, or "Unknown".
func (t *TreasureTable) Group(stem string) string {
	if t == nil {
		return "Unknown"
	}
	if group, ok := t.groupOf[stem]; ok {
		return group
	}
	return "Unknown"
}

// Stems returns every known zone file stem in sorted order.
func (t *TreasureTable) Stems() []string {
	if t == nil {
		return nil
	}
	stems := make([]string, 0, len(t.zones))
	for stem := range t.zones {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems
}

// Name resolves an item id to its display name, falling back to a hex
// placeholder for ids absent from the table.
func (t *ItemTable) Name(id uint16) string {
	if t != nil {
		if name, ok := t.names[id]; ok && name != "" {
			return name
		}
	}
	return fmt.Sprintf("Unknown (0x%04X)", id)
}

// Len returns the number of known item names.
func (t *ItemTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}
