package treasure

import (
	"fmt"
	"html"
	"io"
)

const (
	mapSize   = 800.0
	mapMargin = 40.0
)

// WriteMap renders the chest positions of a zone as a standalone SVG
// document. Coordinates are scaled to fit a fixed canvas; chests with a
// respawn slot are drawn darker than one-shot chests.
func WriteMap(w io.Writer, zoneName string, records []Record) error {
	minX, maxX := int16(0), int16(0)
	minY, maxY := int16(0), int16(0)
	for i, record := range records {
		if i == 0 || record.PosX < minX {
			minX = record.PosX
		}
		if i == 0 || record.PosX > maxX {
			maxX = record.PosX
		}
		if i == 0 || record.PosY < minY {
			minY = record.PosY
		}
		if i == 0 || record.PosY > maxY {
			maxY = record.PosY
		}
	}
	spanX := float64(maxX) - float64(minX)
	spanY := float64(maxY) - float64(minY)
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	scale := (mapSize - 2*mapMargin) / spanX
	if alt := (mapSize - 2*mapMargin) / spanY; alt < scale {
		scale = alt
	}
	project := func(x, y int16) (float64, float64) {
		px := mapMargin + (float64(x)-float64(minX))*scale
		// Flip Y so north is up.
		py := mapSize - mapMargin - (float64(y)-float64(minY))*scale
		return px, py
	}

	if _, err := fmt.Fprintf(w, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\">\n", mapSize, mapSize, mapSize, mapSize); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  <rect width=\"100%%\" height=\"100%%\" fill=\"#f8f4e8\"/>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  <text x=\"%.0f\" y=\"24\" font-size=\"18\" font-family=\"sans-serif\">%s</text>\n", mapMargin, html.EscapeString(zoneName)); err != nil {
		return err
	}
	for _, record := range records {
		px, py := project(record.PosX, record.PosY)
		fill := "#c0392b"
		if record.RespawnSlot != 0xFF {
			fill = "#7b241c"
		}
		if _, err := fmt.Fprintf(w, "  <circle cx=\"%.1f\" cy=\"%.1f\" r=\"6\" fill=\"%s\"/>\n", px, py, fill); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"10\" font-family=\"sans-serif\">%d</text>\n", px+8, py+4, record.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</svg>")
	return err
}
