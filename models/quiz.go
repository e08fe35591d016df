package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is one generated multiple-choice question as sent to clients.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Result is one finished quiz attempt, owned by a user.
type Result struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"user"`
	Date           time.Time        `gorm:"not null;index" json:"date"`
	Topic          string           `gorm:"size:255;not null" json:"topic"`
	Difficulty     Difficulty       `gorm:"type:varchar(10);not null" json:"difficulty"`
	TimeTaken      float64          `gorm:"not null" json:"timeTaken"`
	Score          int              `gorm:"not null" json:"score"`
	TotalQuestions int              `gorm:"not null" json:"totalQuestions"`
	Percentage     int              `gorm:"not null" json:"percentage"`
	Questions      []ResultQuestion `gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE;" json:"questions"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResultQuestion is the per-question detail of a Result.
type ResultQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ResultID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position      int       `gorm:"not null" json:"-"`
	QuestionText  string    `gorm:"type:text;not null" json:"questionText"`
	Options       []string  `gorm:"serializer:json;type:text" json:"options"`
	CorrectAnswer string    `gorm:"type:text;not null" json:"correctAnswer"`
	UserAnswer    string    `gorm:"type:text;not null" json:"userAnswer"`
	IsCorrect     bool      `gorm:"not null" json:"isCorrect"`
}

func (q *ResultQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
