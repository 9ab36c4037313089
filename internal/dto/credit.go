package dto

// TopUpCreditRequest appends a positive ledger entry for a student.
type TopUpCreditRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Amount   int    `json:"amount" validate:"required,gt=0"`
}

// CreditBalanceResponse is one course balance for a student.
type CreditBalanceResponse struct {
	CourseName string `json:"course_name"`
	Credit     int    `json:"credit"`
}
