package dto

import "time"

// StartAttemptDTO starts a practice attempt for a user.
type StartAttemptDTO struct {
	UserID string `json:"user_id" binding:"required,uuid"` // Temporary, until the gateway forwards the identity
}

// UpdateResponseDTO is a partial update of one response. time_spent and
// switch_count are deltas added to the stored values; a delta of zero or less
// is ignored.
type UpdateResponseDTO struct {
	SelectedOptionID NullableString `json:"selected_option_id" swaggertype:"string"`
	TimeSpent        *int           `json:"time_spent"`
	SwitchCount      *int           `json:"switch_count"`
	Flagged          *bool          `json:"flagged"`
}

type QuestionResponseDTO struct {
	ID               string       `json:"id"`
	AttemptID        string       `json:"attempt_id"`
	QuestionID       string       `json:"question_id"`
	Position         int          `json:"position"`
	SelectedOptionID *string      `json:"selected_option_id"`
	SelectedOption   *OptionDTO   `json:"selected_option,omitempty"`
	TimeSpent        int          `json:"time_spent"`
	SwitchCount      int          `json:"switch_count"`
	Flagged          bool         `json:"flagged"`
	IsCorrect        *bool        `json:"is_correct"`
	Question         *QuestionDTO `json:"question,omitempty"`
}

type TestAttemptDetailDTO struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	TestID     string                `json:"test_id"`
	Test       *TestDTO              `json:"test,omitempty"`
	Status     string                `json:"status"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
	Score      *float64              `json:"score"`
	Responses  []QuestionResponseDTO `json:"responses"`
}

type TestAttemptSummaryDTO struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TestID        string     `json:"test_id"`
	TestName      string     `json:"test_name,omitempty"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Score         *float64   `json:"score"`
	ResponseCount int        `json:"response_count"`
	AnsweredCount int        `json:"answered_count"`
}
