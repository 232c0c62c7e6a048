package model

type Section struct {
	Base
	Code    string   `json:"code" gorm:"not null;uniqueIndex"`
	Name    string   `json:"name" gorm:"not null"`
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:SectionID"`
}

type Course struct {
	Base
	Code      string   `json:"code" gorm:"not null;uniqueIndex"`
	Name      string   `json:"name" gorm:"not null"`
	Topic     string   `json:"topic,omitempty"`
	SectionID string   `json:"section_id" gorm:"type:uuid;not null;index"`
	Section   *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`
}
