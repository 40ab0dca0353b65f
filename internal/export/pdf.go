// Package export writes dashboard layouts to report and spreadsheet formats.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// tileColor represents an RGB color for a drawn tile.
type tileColor struct {
	R, G, B int
}

// tileColors is cycled per widget kind, in first-seen order.
var tileColors = []tileColor{
	{R: 0, G: 92, B: 159},   // accent blue
	{R: 76, G: 175, B: 80},  // green
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ErrEmptyLayout is returned when there is nothing to export.
var ErrEmptyLayout = errors.New("layout has no widgets")

// ExportPDF writes a layout report: the first page draws the grid with every
// tile, the second lists the records and carries a QR code of the layout.
func ExportPDF(path string, s model.Settings, records []model.LayoutRecord) error {
	if len(records) == 0 {
		return ErrEmptyLayout
	}
	s.Normalize()

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	colors := kindColors(records)
	renderGridPage(pdf, s, records, colors)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, s, records); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// kindColors assigns each widget kind a color in first-seen order.
func kindColors(records []model.LayoutRecord) map[string]tileColor {
	out := map[string]tileColor{}
	for _, r := range records {
		if _, ok := out[r.Kind]; !ok {
			out[r.Kind] = tileColors[len(out)%len(tileColors)]
		}
	}
	return out
}

// renderGridPage draws the board and its tiles on the current page.
func renderGridPage(pdf *fpdf.Fpdf, s model.Settings, records []model.LayoutRecord, colors map[string]tileColor) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Dashboard Layout (%d x %d cells, %d px)", s.Cols, s.Rows, s.CellSize)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Widgets: %d | Occupied cells: %d of %d | Coverage: %.1f%%",
		len(records), occupiedCells(records), s.Rows*s.Cols, coverage(s, records))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	// One scale for both axes keeps cells square.
	scale := math.Min(drawWidth/float64(s.Cols), drawHeight/float64(s.Rows))
	canvasW := float64(s.Cols) * scale
	canvasH := float64(s.Rows) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Board background, matching the dark canvas.
	pdf.SetFillColor(26, 26, 26)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	drawGridLines(pdf, s, scale, offsetX, offsetY, canvasW, canvasH)

	for _, r := range records {
		col := colors[r.Kind]
		tx := offsetX + float64(r.Col())*scale
		ty := offsetY + float64(r.Row())*scale
		tw := float64(r.SpanX) * scale
		th := float64(r.SpanY) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(224, 224, 224)
		pdf.SetLineWidth(0.3)
		pdf.Rect(tx, ty, tw, th, "FD")

		if tw > 12 && th > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(tw, th))
			pdf.SetTextColor(255, 255, 255)

			title := fitText(pdf, r.Title, tw-2)
			titleW := pdf.GetStringWidth(title)
			pdf.SetXY(tx+(tw-titleW)/2, ty+th/2-4)
			pdf.CellFormat(titleW, 4, title, "", 0, "C", false, 0, "")

			if th > 12 {
				sub := fitText(pdf, r.Kind, tw-2)
				if key := r.BoundKey(); key != "" {
					sub = fitText(pdf, key, tw-2)
				}
				subW := pdf.GetStringWidth(sub)
				pdf.SetXY(tx+(tw-subW)/2, ty+th/2)
				pdf.CellFormat(subW, 4, sub, "", 0, "C", false, 0, "")
			}
		}
	}
	pdf.SetTextColor(0, 0, 0)

	drawKindLegend(pdf, colors, records, offsetY+canvasH+5)
}

// drawGridLines draws the cell boundaries inside the board rectangle.
func drawGridLines(pdf *fpdf.Fpdf, s model.Settings, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetDrawColor(70, 70, 70)
	pdf.SetLineWidth(0.1)
	for c := 1; c < s.Cols; c++ {
		x := offsetX + float64(c)*scale
		pdf.Line(x, offsetY, x, offsetY+canvasH)
	}
	for r := 1; r < s.Rows; r++ {
		y := offsetY + float64(r)*scale
		pdf.Line(offsetX, y, offsetX+canvasW, y)
	}
}

// drawKindLegend renders one swatch per widget kind below the board.
func drawKindLegend(pdf *fpdf.Fpdf, colors map[string]tileColor, records []model.LayoutRecord, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Widget kinds:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	seen := map[string]bool{}
	for _, r := range records {
		if seen[r.Kind] {
			continue
		}
		seen[r.Kind] = true
		col := colors[r.Kind]
		label := fmt.Sprintf("%s (%d)", r.Kind, countKind(records, r.Kind))
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage lists every record and adds the layout QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, s model.Settings, records []model.LayoutRecord) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Layout Records", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{12, 48, 24, 24, 24, 52}
	headers := []string{"#", "Title", "Kind", "Cell", "Span", "Bound Key"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	maxY := pageHeight - marginBottom - 6
	for i, r := range records {
		if y > maxY {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(100, 6, fmt.Sprintf("... and %d more", len(records)-i), "", 0, "L", false, 0, "")
			break
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			fitText(pdf, r.Title, colWidths[1]-2),
			fitText(pdf, r.Kind, colWidths[2]-2),
			fmt.Sprintf("%d, %d", r.Col(), r.Row()),
			fmt.Sprintf("%d x %d", r.SpanX, r.SpanY),
			fitText(pdf, r.BoundKey(), colWidths[5]-2),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if err := renderLayoutQR(pdf, pageWidth-marginRight-qrSize, marginTop+18, s, records); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by KevinbotLib Dashboard", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// fitText truncates s with an ellipsis until it fits in width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func occupiedCells(records []model.LayoutRecord) int {
	total := 0
	for _, r := range records {
		total += r.SpanX * r.SpanY
	}
	return total
}

func coverage(s model.Settings, records []model.LayoutRecord) float64 {
	cells := s.Rows * s.Cols
	if cells == 0 {
		return 0
	}
	return float64(occupiedCells(records)) / float64(cells) * 100
}

func countKind(records []model.LayoutRecord, kind string) int {
	n := 0
	for _, r := range records {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
