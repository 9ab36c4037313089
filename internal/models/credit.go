package models

import "time"

// CourseCredit is the materialized per-student, per-course balance.
// It may go negative: a negative balance is an overdraft of owed classes.
type CourseCredit struct {
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Credit    int       `db:"credit" json:"credit"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreditEntryReason tags why a ledger entry was appended.
type CreditEntryReason string

const (
	CreditReasonAttendance CreditEntryReason = "ATTENDANCE"
	CreditReasonTopUp      CreditEntryReason = "TOP_UP"
)

// CreditEntry is one immutable row of the append-only credit ledger.
// The CourseCredit balance is the sum of a student's entries per course.
type CreditEntry struct {
	ID        string            `db:"id" json:"id"`
	StudentID string            `db:"student_id" json:"student_id"`
	CourseID  string            `db:"course_id" json:"course_id"`
	Delta     int               `db:"delta" json:"delta"`
	Reason    CreditEntryReason `db:"reason" json:"reason"`
	SessionID *string           `db:"session_id" json:"session_id,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// CourseCreditSummary is a balance joined with its course name.
type CourseCreditSummary struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	Credit     int    `db:"credit" json:"credit"`
}
