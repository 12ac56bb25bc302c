package models

import (
	"encoding/json"
	"time"
)

// Challenge is a leveled coding exercise. Challenges are looked up by level from
// the game routes; a level without a seeded challenge falls back to a default
// (see LevelChallenge in the services package).
type Challenge struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Level       int    `json:"level" gorm:"not null;index"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Category    string `json:"category" gorm:"size:50;not null"` // python, html, css, javascript
	Difficulty  string `json:"difficulty" gorm:"size:20;default:'beginner'"`
	Points      int    `json:"points" gorm:"default:100"`

	StarterCode        string `json:"starter_code" gorm:"type:text"`
	SolutionCode       string `json:"-" gorm:"type:text"`
	TestCases          string `json:"-" gorm:"type:text"` // JSON array of test cases
	Hints              string `json:"-" gorm:"type:text"` // JSON array of hint strings
	LearningObjectives string `json:"learning_objectives" gorm:"type:text"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TestCase is one entry of a challenge's test_cases JSON blob.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Type     string `json:"type"`
}

func (c *Challenge) GetTestCases() []TestCase {
	if c.TestCases == "" {
		return nil
	}
	var cases []TestCase
	if err := json.Unmarshal([]byte(c.TestCases), &cases); err != nil {
		return nil
	}
	return cases
}

func (c *Challenge) GetHints() []string {
	if c.Hints == "" {
		return nil
	}
	var hints []string
	if err := json.Unmarshal([]byte(c.Hints), &hints); err != nil {
		return nil
	}
	return hints
}
