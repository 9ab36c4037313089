package models

import "time"

// Course is a teachable subject students hold credits against.
type Course struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Deleted bool   `db:"deleted" json:"-"`
}

// ClassSession is one concrete occurrence of a course being taught.
// StartTime is always stored as a UTC instant; SeriesID is set only for
// sessions produced by a recurring scheduling request and is shared by
// every instance of that series.
type ClassSession struct {
	ID                  string     `db:"id" json:"id"`
	SeriesID            *string    `db:"series_id" json:"series_id,omitempty"`
	CourseID            string     `db:"course_id" json:"course_id"`
	StartTime           time.Time  `db:"start_time" json:"start_time"`
	DurationMinutes     int        `db:"duration_minutes" json:"duration_minutes"`
	Info                string     `db:"info" json:"info,omitempty"`
	AttendanceTaken     bool       `db:"attendance_taken" json:"attendance_taken"`
	AttendanceTeacherID *string    `db:"attendance_teacher_id" json:"attendance_teacher_id,omitempty"`
	AttendanceTime      *time.Time `db:"attendance_time" json:"attendance_time,omitempty"`
	Deleted             bool       `db:"deleted" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// Teaching links a teacher to a session. The scheduler inserts exactly one
// row per generated session; more can be added later for co-teaching.
type Teaching struct {
	SessionID string `db:"session_id" json:"session_id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	Comments  string `db:"comments" json:"comments,omitempty"`
}

// TakingClass is a roster row: a student's planned or actual participation
// in one session instance. Created at scheduling time (attended=false) or
// lazily at attendance time; mutated in place, never deleted.
type TakingClass struct {
	SessionID string `db:"session_id" json:"session_id"`
	StudentID string `db:"student_id" json:"student_id"`
	Attended  bool   `db:"attended" json:"attended"`
	Comments  string `db:"comments" json:"comments,omitempty"`
}

// SessionDetail is a session joined with its course name for listings.
type SessionDetail struct {
	ClassSession
	CourseName string `db:"course_name" json:"course_name"`
}

// StudentSessionDetail adds the student's attendance flag to a listing row.
type StudentSessionDetail struct {
	SessionDetail
	Attended bool `db:"attended" json:"attended"`
}
