package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/exam-scheduler-api/internal/seating"
)

// ChartSeat is a seated student addressed by sequential row and column.
type ChartSeat struct {
	Row    int
	Column int
	Label  string
}

// ChartRoom is one page of a seating chart.
type ChartRoom struct {
	Code     string
	Rows     int
	Columns  int
	Capacity int
	Groups   []int
	Seats    []ChartSeat
}

// PDFExporter renders timetables and seating charts with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

var timetableColumns = []struct {
	header string
	width  float64
}{
	{"Date", 24}, {"Start", 16}, {"End", 16}, {"Code", 24}, {"Course", 70},
	{"Instructor", 45}, {"Class", 14}, {"Students", 18}, {"Rooms", 50},
}

// Timetable renders a landscape table, one line per exam.
func (e *PDFExporter) Timetable(title string, rows []TimetableRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for _, col := range timetableColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range rows {
		values := []string{row.Date, row.Start, row.End, row.CourseCode, row.CourseName, row.Instructor, row.Cohort, strconv.Itoa(row.Students), row.Rooms}
		for i, col := range timetableColumns {
			pdf.CellFormat(col.width, 7, tr(fit(pdf, values[i], col.width-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf)
}

const (
	boxW     = 15.0
	boxH     = 7.5
	spacing  = 2.0
	groupGap = 8.0
)

// SeatingChart draws one page per room. Seat groups are laid out left to
// right; aisle positions of each group's fill pattern are shaded and left empty.
func (e *PDFExporter) SeatingChart(title, subtitle string, rooms []ChartRoom) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", false, 0, "")

	_, pageH := pdf.GetPageSize()
	for _, room := range rooms {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, tr("Room: "+room.Code), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Rows: %d   Columns: %d   Capacity: %d", room.Rows, room.Columns, room.Capacity), "", 1, "L", false, 0, "")

		if len(room.Seats) == 0 {
			pdf.CellFormat(0, 8, "No students were assigned to this room.", "", 1, "L", false, 0, "")
			continue
		}

		labels := make(map[[2]int]string, len(room.Seats))
		rows := room.Rows
		for _, seat := range room.Seats {
			labels[[2]int{seat.Row, seat.Column}] = seat.Label
			if seat.Row > rows {
				rows = seat.Row
			}
		}

		groups := chartGroups(room)
		startX, y := 20.0, 40.0
		for r := 1; r <= rows; r++ {
			if y+boxH > pageH-15 {
				pdf.AddPage()
				y = 20
			}
			x := startX
			column := 0
			for gi, group := range groups {
				if gi > 0 {
					x += groupGap
				}
				for _, usable := range seating.FillPattern(group) {
					label, seated := "", false
					if usable == 1 {
						column++
						label, seated = labels[[2]int{r, column}]
					}
					if seated {
						pdf.SetFillColor(173, 216, 230)
					} else {
						pdf.SetFillColor(211, 211, 211)
					}
					pdf.Rect(x, y, boxW, boxH, "FD")
					if seated {
						pdf.SetFont("Arial", "", 5)
						pdf.SetXY(x, y)
						pdf.CellFormat(boxW, boxH, tr(fit(pdf, label, boxW-1)), "", 0, "C", false, 0, "")
					}
					x += boxW + spacing
				}
			}
			y += boxH + spacing
		}

		pdf.SetFont("Arial", "", 9)
		pdf.SetXY(15, pageH-15)
		pdf.CellFormat(0, 6, fmt.Sprintf("Seated: %d students", len(room.Seats)), "", 0, "L", false, 0, "")
	}
	return output(pdf)
}

// chartGroups falls back to one seat per column when no layout is stored.
func chartGroups(room ChartRoom) []int {
	if len(room.Groups) > 0 {
		return room.Groups
	}
	columns := room.Columns
	for _, seat := range room.Seats {
		if seat.Column > columns {
			columns = seat.Column
		}
	}
	groups := make([]int, columns)
	for i := range groups {
		groups[i] = 1
	}
	return groups
}

func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
