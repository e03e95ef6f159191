package dto

import "time"

// GenerateExamScheduleRequest carries the parameters of one scheduling run.
type GenerateExamScheduleRequest struct {
	DepartmentID     string         `json:"departmentId" validate:"required"`
	CourseCodes      []string       `json:"courseCodes" validate:"omitempty,dive,required"`
	StartDate        string         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string         `json:"endDate" validate:"required,datetime=2006-01-02"`
	ExcludedWeekdays []string       `json:"excludedWeekdays" validate:"omitempty,dive,min=3"`
	ExamType         string         `json:"examType" validate:"required,max=64"`
	DurationMinutes  int            `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
	GapMinutes       *int           `json:"gapMinutes" validate:"omitempty,min=0,max=240"`
	NoOverlap        bool           `json:"noOverlap"`
	CustomDurations  map[string]int `json:"customDurations" validate:"omitempty,dive,keys,required,endkeys,min=1,max=600"`
	WindowStart      string         `json:"windowStart" validate:"omitempty,datetime=15:04"`
	WindowEnd        string         `json:"windowEnd" validate:"omitempty,datetime=15:04"`
	DryRun           bool           `json:"dryRun"`
	Seed             int64          `json:"seed"`
}

// PlacedExamResponse is one placed course.
type PlacedExamResponse struct {
	ExamID          string    `json:"examId,omitempty"`
	CourseID        string    `json:"courseId"`
	CourseCode      string    `json:"courseCode"`
	CourseName      string    `json:"courseName"`
	Instructor      string    `json:"instructor,omitempty"`
	ClassName       string    `json:"className,omitempty"`
	StudentCount    int       `json:"studentCount"`
	Date            string    `json:"date"`
	StartsAt        time.Time `json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
	DurationMinutes int       `json:"durationMinutes"`
	ExamType        string    `json:"examType"`
	Rooms           []string  `json:"rooms"`
	Capacity        int       `json:"capacity"`
}

// FeasibilityResponse reports the slot capacity check.
type FeasibilityResponse struct {
	SlotsPerDay int  `json:"slotsPerDay"`
	Days        int  `json:"days"`
	Available   int  `json:"available"`
	Required    int  `json:"required"`
	Feasible    bool `json:"feasible"`
}

// GenerateExamScheduleResponse is returned by a successful run.
type GenerateExamScheduleResponse struct {
	TermID      string               `json:"termId,omitempty"`
	DryRun      bool                 `json:"dryRun"`
	Workdays    int                  `json:"workdays"`
	Feasibility *FeasibilityResponse `json:"feasibility,omitempty"`
	Exams       []PlacedExamResponse `json:"exams"`
}

// SchedulingFailureDetail is one entry of an UNSCHEDULABLE error.
type SchedulingFailureDetail struct {
	Kind       string `json:"kind"`
	CourseCode string `json:"courseCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message"`
}

// ExamSummary is a persisted exam as listed per term or department.
type ExamSummary struct {
	ID           string    `json:"id"`
	TermID       string    `json:"termId"`
	CourseID     string    `json:"courseId"`
	CourseCode   string    `json:"courseCode"`
	CourseName   string    `json:"courseName"`
	Instructor   string    `json:"instructor,omitempty"`
	ClassName    string    `json:"className,omitempty"`
	ExamType     string    `json:"examType"`
	StudentCount int       `json:"studentCount"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	Status       string    `json:"status"`
	Rooms        []string  `json:"rooms"`
}

// ExamTermResponse describes a committed exam term.
type ExamTermResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ExamType  string `json:"examType"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

// TermExamsResponse lists the exams of one term.
type TermExamsResponse struct {
	Term  *ExamTermResponse `json:"term,omitempty"`
	Exams []ExamSummary     `json:"exams"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}
