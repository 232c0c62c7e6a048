package dto

type SectionCreateDTO struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type SectionUpdateDTO struct {
	Code *string `json:"code" binding:"omitempty,min=1"`
	Name *string `json:"name" binding:"omitempty,min=1"`
}

type CourseCreateDTO struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Topic       string `json:"topic"`
	SectionCode string `json:"section_code" binding:"required"`
}

type CourseUpdateDTO struct {
	Code  *string `json:"code" binding:"omitempty,min=1"`
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Topic *string `json:"topic"`
}

type QuestionCreateDTO struct {
	UniqueCode   string   `json:"unique_code" binding:"required"`
	Title        string   `json:"title" binding:"required"`
	Content      string   `json:"content" binding:"required"`
	Period       string   `json:"period" binding:"required"`
	Type         string   `json:"type" binding:"required"`
	Solution     *string  `json:"solution"`
	ImageURLs    []string `json:"image_urls" binding:"omitempty,dive,url"`
	CorrectLabel *string  `json:"correct_label"`
	CourseCode   string   `json:"course_code" binding:"required"`
}

// QuestionUpdateDTO only changes the fields that are present.
type QuestionUpdateDTO struct {
	UniqueCode   *string  `json:"unique_code" binding:"omitempty,min=1"`
	Title        *string  `json:"title" binding:"omitempty,min=1"`
	Content      *string  `json:"content" binding:"omitempty,min=1"`
	Period       *string  `json:"period" binding:"omitempty,min=1"`
	Type         *string  `json:"type" binding:"omitempty,min=1"`
	Solution     *string  `json:"solution"`
	ImageURLs    []string `json:"image_urls" binding:"omitempty,dive,url"`
	CorrectLabel *string  `json:"correct_label"`
	CourseCode   *string  `json:"course_code" binding:"omitempty,min=1"`
}

type OptionCreateDTO struct {
	Label        string   `json:"label" binding:"required"`
	Text         string   `json:"text" binding:"required"`
	ImageURLs    []string `json:"image_urls" binding:"omitempty,dive,url"`
	QuestionCode string   `json:"question_code" binding:"required"`
}

type OptionUpdateDTO struct {
	Label        *string  `json:"label" binding:"omitempty,min=1"`
	Text         *string  `json:"text" binding:"omitempty,min=1"`
	ImageURLs    []string `json:"image_urls" binding:"omitempty,dive,url"`
	QuestionCode *string  `json:"question_code" binding:"omitempty,min=1"`
}

type TestCreateDTO struct {
	Name        string   `json:"name" binding:"required"`
	QuestionIDs []string `json:"question_ids" binding:"omitempty,dive,uuid"`
}

// TestFromFiltersDTO creates a test holding every live question that matches
// the catalogue filters. Empty filter fields match everything.
type TestFromFiltersDTO struct {
	Name    string           `json:"name" binding:"required"`
	Filters QuestionSetQuery `json:"filters"`
}

type TestUpdateDTO struct {
	Name string `json:"name" binding:"required"`
}

type TestQuestionsDTO struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1,dive,uuid"`
}

type UserCreateDTO struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
	Role  string  `json:"role" binding:"omitempty,oneof=ADMIN STUDENT"`
}

type UserUpdateDTO struct {
	Email *string `json:"email" binding:"omitempty,email"`
	Name  *string `json:"name"`
	Image *string `json:"image" binding:"omitempty,url"`
	Role  *string `json:"role" binding:"omitempty,oneof=ADMIN STUDENT"`
}
