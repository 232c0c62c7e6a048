package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionResponse is one student's interaction with one question inside an
// attempt. (attempt_id, question_id) is unique.
type QuestionResponse struct {
	ID               string       `gorm:"type:uuid;primarykey" json:"id"`
	AttemptID        string       `json:"attempt_id" gorm:"type:uuid;not null;uniqueIndex:idx_response_attempt_question"`
	Attempt          *TestAttempt `json:"attempt,omitempty" gorm:"foreignKey:AttemptID"`
	QuestionID       string       `json:"question_id" gorm:"type:uuid;not null;uniqueIndex:idx_response_attempt_question"`
	Question         *Question    `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Position         int          `json:"position" gorm:"not null;default:0"`
	SelectedOptionID *string      `json:"selected_option_id" gorm:"type:uuid"`
	SelectedOption   *Option      `json:"selected_option,omitempty" gorm:"foreignKey:SelectedOptionID"`
	TimeSpent        int          `json:"time_spent" gorm:"not null;default:0"`
	SwitchCount      int          `json:"switch_count" gorm:"not null;default:0"`
	Flagged          bool         `json:"flagged" gorm:"not null;default:false"`
	IsCorrect        *bool        `json:"is_correct"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (r *QuestionResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
