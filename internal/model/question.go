package model

import "github.com/lib/pq"

type Question struct {
	Base
	UniqueCode    string         `json:"unique_code" gorm:"not null;uniqueIndex"`
	Title         string         `json:"title" gorm:"not null;index"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	Period        string         `json:"period" gorm:"not null;index"`
	Type          string         `json:"type" gorm:"not null;index"`
	Solution      *string        `json:"solution,omitempty" gorm:"type:text"`
	AIExplanation *string        `json:"ai_explanation,omitempty" gorm:"type:text"`
	ImageURLs     pq.StringArray `json:"image_urls" gorm:"type:text[]"`
	CorrectLabel  *string        `json:"correct_label,omitempty"`
	CourseID      string         `json:"course_id" gorm:"type:uuid;not null;index"`
	Course        *Course        `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Options       []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// OptionByID returns the option with the given id among the loaded options.
func (q *Question) OptionByID(id string) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

type Option struct {
	Base
	Label      string         `json:"label" gorm:"not null"`
	Text       string         `json:"text" gorm:"type:text;not null"`
	ImageURLs  pq.StringArray `json:"image_urls" gorm:"type:text[]"`
	QuestionID string         `json:"question_id" gorm:"type:uuid;not null;index"`
	Question   *Question      `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}
