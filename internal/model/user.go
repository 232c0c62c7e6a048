package model

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

type User struct {
	Base
	Email string  `json:"email" gorm:"not null;uniqueIndex"`
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
	Role  string  `json:"role" gorm:"not null;default:'STUDENT'"`
}
