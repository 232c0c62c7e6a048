package model

type Test struct {
	Base
	Name      string        `json:"name" gorm:"not null;uniqueIndex"`
	Questions []Question    `json:"questions,omitempty" gorm:"many2many:test_questions;"`
	Attempts  []TestAttempt `json:"attempts,omitempty" gorm:"foreignKey:TestID"`
}
