package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/kevinbotlib/dashboard/internal/model"
)

// QRPayload is the data encoded into the layout QR code. Scanning it yields
// a document the dashboard can import directly.
type QRPayload struct {
	Grid   int                  `json:"grid"`
	Rows   int                  `json:"rows"`
	Cols   int                  `json:"cols"`
	Layout []model.LayoutRecord `json:"layout"`
}

const (
	qrSize       = 50.0 // QR code size in mm
	qrCaptionGap = 2.0
)

// LayoutQR encodes the grid dimensions and records as a PNG QR code. It
// fails when the JSON document exceeds the capacity of a QR symbol.
func LayoutQR(s model.Settings, records []model.LayoutRecord) ([]byte, error) {
	payload := QRPayload{Grid: s.CellSize, Rows: s.Rows, Cols: s.Cols, Layout: records}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Low, 512)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// renderLayoutQR places the layout QR code with a caption at (x, y). A layout
// too large for a QR symbol gets a caption saying so instead.
func renderLayoutQR(pdf *fpdf.Fpdf, x, y float64, s model.Settings, records []model.LayoutRecord) error {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)

	png, err := LayoutQR(s, records)
	if err != nil {
		pdf.SetXY(x, y)
		pdf.MultiCell(qrSize, 3.5, "Layout too large for a QR code; use the XLSX export instead.", "1", "C", false)
		pdf.SetTextColor(0, 0, 0)
		return nil
	}

	const imgName = "layout_qr"
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if pdf.Err() {
		return fmt.Errorf("failed to register QR image: %w", pdf.Error())
	}
	pdf.ImageOptions(imgName, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetXY(x, y+qrSize+qrCaptionGap)
	pdf.CellFormat(qrSize, 3, "Scan to import this layout", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
