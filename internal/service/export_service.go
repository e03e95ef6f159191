package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type csvRenderer interface {
	Timetable(rows []export.TimetableRow) ([]byte, error)
	Seating(rows []export.SeatingRow) ([]byte, error)
}

type pdfRenderer interface {
	Timetable(title string, rows []export.TimetableRow) ([]byte, error)
	SeatingChart(title, subtitle string, rooms []export.ChartRoom) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// SeatingExport bundles what a seating export needs.
type SeatingExport struct {
	Exam  models.ExamDetail
	Rooms []models.Classroom
	Seats []models.SeatAssignmentDetail
}

// ExportService renders timetables and seating plans.
type ExportService struct {
	csv csvRenderer
	pdf pdfRenderer
}

// NewExportService constructs an ExportService; nil renderers use the defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf}
}

// Timetable renders a term's exams sorted by date then start time.
func (s *ExportService) Timetable(format, title string, exams []models.ExamDetail) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	rows := timetableRows(exams)
	base := "exam-timetable"

	switch format {
	case FormatPDF:
		body, err := s.pdf.Timetable(title, rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		body, err := s.csv.Timetable(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}
}

// Seating renders an exam's stored seat plan.
func (s *ExportService) Seating(format string, data SeatingExport) (*ExportFile, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	base := fmt.Sprintf("seating-%s", strings.ToLower(data.Exam.CourseCode))

	if format == FormatPDF {
		title := fmt.Sprintf("%s %s", data.Exam.CourseCode, data.Exam.CourseName)
		subtitle := fmt.Sprintf("%s  %s-%s", data.Exam.StartsAt.Format("Mon 02 Jan 2006"),
			data.Exam.StartsAt.Format("15:04"), data.Exam.EndsAt.Format("15:04"))
		body, err := s.pdf.SeatingChart(title, subtitle, chartRooms(data.Rooms, data.Seats))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render seating pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}

	rows := make([]export.SeatingRow, 0, len(data.Seats))
	for _, seat := range data.Seats {
		rows = append(rows, export.SeatingRow{
			Room:          seat.RoomCode,
			Row:           seat.RowNo,
			Column:        seat.ColNo,
			StudentNumber: seat.StudentNumber,
			StudentName:   seat.StudentName,
		})
	}
	body, err := s.csv.Seating(rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render seating csv")
	}
	return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
}

func normalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func timetableRows(exams []models.ExamDetail) []export.TimetableRow {
	sorted := make([]models.ExamDetail, len(exams))
	copy(sorted, exams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})

	rows := make([]export.TimetableRow, 0, len(sorted))
	for _, exam := range sorted {
		rows = append(rows, export.TimetableRow{
			Date:       exam.StartsAt.Format("2006-01-02"),
			Start:      exam.StartsAt.Format("15:04"),
			End:        exam.EndsAt.Format("15:04"),
			CourseCode: exam.CourseCode,
			CourseName: exam.CourseName,
			Instructor: exam.InstructorName,
			Cohort:     exam.ClassName,
			Students:   exam.StudentCount,
			Rooms:      strings.Join(exam.RoomCodes, ", "),
			ExamType:   exam.ExamType,
		})
	}
	return rows
}

func chartRooms(rooms []models.Classroom, seats []models.SeatAssignmentDetail) []export.ChartRoom {
	byRoom := make(map[string][]export.ChartSeat, len(rooms))
	for _, seat := range seats {
		byRoom[seat.ClassroomID] = append(byRoom[seat.ClassroomID], export.ChartSeat{
			Row:    seat.RowNo,
			Column: seat.ColNo,
			Label:  seat.StudentNumber,
		})
	}
	out := make([]export.ChartRoom, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, export.ChartRoom{
			Code:     room.Code,
			Rows:     room.NumRows,
			Columns:  room.NumCols,
			Capacity: room.Capacity,
			Groups:   room.Columns,
			Seats:    byRoom[room.ID],
		})
	}
	return out
}
