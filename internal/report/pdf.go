package report

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// SaveTreasurePDF renders the given treasure report into a PDF document.
func SaveTreasurePDF(rep TreasureReport, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Treasure Report", false)
	pdf.SetAuthor("ff12ctl", false)
	pdf.SetCreator("ff12ctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Treasure Report")
	addSummarySection(pdf, rep)
	addZoneTableSection(pdf, rep.Zones)
	addSourceSection(pdf, rep)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, rep TreasureReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Source", value: emptyFallback(rep.SourceDir, "-")},
		{label: "Generated", value: generatedLabel(rep.GeneratedAt)},
		{label: "Zones", value: strconv.Itoa(len(rep.Zones))},
		{label: "Chests", value: strconv.Itoa(rep.TotalChests())},
		{label: "Respawning", value: strconv.Itoa(rep.TotalRespawning())},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addZoneTableSection(pdf *gofpdf.Fpdf, rows []ZoneSummary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Zones")
	pdf.Ln(9)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No zones dumped.", "", "L", false)
		pdf.Ln(4)
		return
	}

	headers := []string{"Area", "Zone", "Chests", "Respawning"}
	widths := []float64{50, 90, 20, 30}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, row := range rows {
		values := []string{
			emptyFallback(row.Group, "-"),
			emptyFallback(row.Zone, "-"),
			strconv.Itoa(row.Chests),
			strconv.Itoa(row.Respawning),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addSourceSection(pdf *gofpdf.Fpdf, rep TreasureReport) {
	if strings.TrimSpace(rep.SourceHash) == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Source Archive")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, "SHA-256: "+rep.SourceHash, "", "L", false)
	pdf.Ln(2)

	png, err := SourceHashToQR(rep.SourceHash, 256)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("source-hash-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("source-hash-qr", pdf.GetX(), pdf.GetY(), 40, 40, false, opts, 0, "")
	pdf.Ln(44)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func generatedLabel(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
