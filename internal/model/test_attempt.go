package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptAbandoned  AttemptStatus = "ABANDONED"
)

type TestAttempt struct {
	ID         string             `gorm:"type:uuid;primarykey" json:"id"`
	UserID     string             `json:"user_id" gorm:"type:uuid;not null;index"`
	User       *User              `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TestID     string             `json:"test_id" gorm:"type:uuid;not null;index"`
	Test       *Test              `json:"test,omitempty" gorm:"foreignKey:TestID"`
	Status     AttemptStatus      `json:"status" gorm:"not null;default:'IN_PROGRESS';index"`
	StartedAt  time.Time          `json:"started_at" gorm:"not null"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Score      *float64           `json:"score,omitempty"`
	Responses  []QuestionResponse `json:"responses,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	DeletedAt  gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (a *TestAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
