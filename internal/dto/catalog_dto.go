package dto

import "time"

type OptionDTO struct {
	ID         string   `json:"id"`
	QuestionID string   `json:"question_id"`
	Label      string   `json:"label"`
	Text       string   `json:"text"`
	ImageURLs  []string `json:"image_urls"`
}

type SectionDTO struct {
	ID      string      `json:"id"`
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Courses []CourseDTO `json:"courses,omitempty"`
}

type CourseDTO struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Topic     string `json:"topic,omitempty"`
	SectionID string `json:"section_id"`
}

type QuestionDTO struct {
	ID           string      `json:"id"`
	UniqueCode   string      `json:"unique_code"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Period       string      `json:"period"`
	Type         string      `json:"type"`
	Solution     *string     `json:"solution,omitempty"`
	ImageURLs    []string    `json:"image_urls"`
	CorrectLabel *string     `json:"correct_label,omitempty"`
	CourseID     string      `json:"course_id"`
	Course       *CourseDTO  `json:"course,omitempty"`
	Options      []OptionDTO `json:"options"`
	CreatedAt    time.Time   `json:"created_at"`
}

// QuestionSetDTO groups the questions sharing section, course, type and period.
type QuestionSetDTO struct {
	Section   string        `json:"section"`
	Course    string        `json:"course"`
	Type      string        `json:"type"`
	Period    string        `json:"period"`
	Questions []QuestionDTO `json:"questions"`
}

type QuestionFiltersDTO struct {
	Sections []string `json:"sections"`
	Courses  []string `json:"courses"`
	Types    []string `json:"types"`
	Periods  []string `json:"periods"`
}

type QuestionSetQuery struct {
	Section string `form:"section" json:"section"`
	Course  string `form:"course" json:"course"`
	Type    string `form:"type" json:"type"`
	Period  string `form:"period" json:"period"`
}

type QuestionExplanationDTO struct {
	QuestionID  string `json:"question_id"`
	Explanation string `json:"explanation"`
	Source      string `json:"source"` // "solution" or "ai"
}

type TestDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Questions []QuestionDTO `json:"questions,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type TestSummaryDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	QuestionCount int       `json:"question_count"`
	AttemptCount  int       `json:"attempt_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Image     *string   `json:"image,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
