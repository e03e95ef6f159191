package dto

// RoomLayoutResponse describes a room and its column groups.
type RoomLayoutResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Capacity    int    `json:"capacity"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	SeatGroups  []int  `json:"seatGroups"`
	SeatsPerRow int    `json:"seatsPerRow"`
}

// ExamOverviewResponse is an exam with its rooms.
type ExamOverviewResponse struct {
	Exam  ExamSummary          `json:"exam"`
	Rooms []RoomLayoutResponse `json:"rooms"`
}

// SeatResponse is one seated student.
type SeatResponse struct {
	StudentID     string `json:"studentId"`
	StudentNumber string `json:"studentNumber"`
	StudentName   string `json:"studentName"`
	RoomID        string `json:"roomId"`
	RoomCode      string `json:"roomCode"`
	Row           int    `json:"row"`
	Column        int    `json:"column"`
}

// SeatingWarning is a non-fatal seating remark.
type SeatingWarning struct {
	Kind     string `json:"kind"`
	RoomCode string `json:"roomCode,omitempty"`
	Message  string `json:"message"`
}

// SeatingResponse is a generated or stored seating plan.
type SeatingResponse struct {
	ExamID   string               `json:"examId"`
	Rooms    []RoomLayoutResponse `json:"rooms"`
	Seats    []SeatResponse       `json:"seats"`
	Warnings []SeatingWarning     `json:"warnings"`
}
