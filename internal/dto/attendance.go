package dto

// AttendanceOutcome is one student's attended/absent result for a session.
type AttendanceOutcome struct {
	StudentID string `json:"student_id" validate:"required"`
	Attended  bool   `json:"attended"`
	Comments  string `json:"comments"`
}

// TakeAttendanceRequest submits the attendance call for one session.
// Every listed student is debited one credit whether or not they attended;
// the attended flag only controls the roster row.
type TakeAttendanceRequest struct {
	Outcomes []AttendanceOutcome `json:"outcomes" validate:"required,min=1,dive"`
}

// AmendAttendanceRequest corrects a previously taken attendance call.
type AmendAttendanceRequest struct {
	Outcomes []AttendanceOutcome `json:"outcomes" validate:"required,min=1,dive"`
}

// AttendanceResult summarizes what an attendance call changed.
type AttendanceResult struct {
	SessionID         string `json:"session_id"`
	StudentsDebited   int    `json:"students_debited"`
	RosterRowsWritten int    `json:"roster_rows_written"`
}
