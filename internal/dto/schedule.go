package dto

// ScheduleSessionsRequest creates one session or a weekly series.
// start_time and repeat_until are civil timestamps with an explicit UTC
// offset; repeat_weekdays uses Monday=0 .. Sunday=6.
type ScheduleSessionsRequest struct {
	CourseID        string   `json:"course_id" validate:"required"`
	StartTime       string   `json:"start_time" validate:"required"`
	DurationMinutes int      `json:"duration_minutes"`
	Info            string   `json:"info"`
	RepeatWeekly    bool     `json:"repeat_weekly"`
	RepeatWeekdays  []int    `json:"repeat_weekdays"`
	RepeatUntil     string   `json:"repeat_until"`
	StudentIDs      []string `json:"student_ids"`
}

// ScheduleSessionsResponse reports the created series.
type ScheduleSessionsResponse struct {
	CreatedSessionIDs []string `json:"created_session_ids"`
	SeriesID          *string  `json:"series_id,omitempty"`
}

// SessionWindowQuery bounds session listings to a time frame.
type SessionWindowQuery struct {
	From string `form:"from" validate:"required"`
	To   string `form:"to" validate:"required"`
}
