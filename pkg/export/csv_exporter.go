package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// TimetableRow is one exam in a timetable export.
type TimetableRow struct {
	Date       string `csv:"date"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Instructor string `csv:"instructor"`
	Cohort     string `csv:"class"`
	Students   int    `csv:"students"`
	Rooms      string `csv:"rooms"`
	ExamType   string `csv:"exam_type"`
}

// SeatingRow is one seated student in a seating export.
type SeatingRow struct {
	Room          string `csv:"room"`
	Row           int    `csv:"row"`
	Column        int    `csv:"column"`
	StudentNumber string `csv:"student_number"`
	StudentName   string `csv:"student_name"`
}

// CSVExporter marshals typed rows with gocsv.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Timetable renders timetable rows, header included.
func (e *CSVExporter) Timetable(rows []TimetableRow) ([]byte, error) {
	return marshal(&rows)
}

// Seating renders seating rows, header included.
func (e *CSVExporter) Seating(rows []SeatingRow) ([]byte, error) {
	return marshal(&rows)
}

func marshal(rows interface{}) ([]byte, error) {
	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}
