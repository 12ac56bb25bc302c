package models

import (
	"encoding/json"
	"time"
)

// Lesson is a static piece of course content addressed by its topic slug.
type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Topic     string    `json:"topic" gorm:"size:100;uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"-" gorm:"type:text"` // JSON array of section titles
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (l *Lesson) GetContent() []string {
	if l.Content == "" {
		return nil
	}
	var sections []string
	if err := json.Unmarshal([]byte(l.Content), &sections); err != nil {
		return nil
	}
	return sections
}
