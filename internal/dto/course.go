package dto

// CreateCourseRequest adds a course to the catalog.
type CreateCourseRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateCourseRequest renames a course.
type UpdateCourseRequest struct {
	Name string `json:"name" validate:"required"`
}
