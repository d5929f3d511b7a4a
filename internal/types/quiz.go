package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeTrueFalse      = "true-false"
	QuestionTypeCoding         = "coding"
)

type Answer struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect bool      `json:"is_correct"`
}

type Question struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Type        string    `json:"type"`
	Answers     []Answer  `json:"answers"`
	CodeSnippet string    `json:"code_snippet,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Points      int       `json:"points"`
}

// Quiz belongs to a roadmap week. Questions are embedded as a JSON document;
// grading reads them as a snapshot.
type Quiz struct {
	ID           uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string                        `gorm:"not null;column:title" json:"title"`
	Description  string                        `gorm:"not null;column:description" json:"description"`
	RoadmapID    uuid.UUID                     `gorm:"type:uuid;not null;index;column:roadmap_id" json:"roadmap_id"`
	Roadmap      *Roadmap                      `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
	WeekNumber   int                           `gorm:"not null;column:week_number" json:"week_number"`
	DayNumber    int                           `gorm:"column:day_number" json:"day_number,omitempty"`
	Questions    datatypes.JSONSlice[Question] `gorm:"column:questions" json:"questions"`
	TimeLimit    int                           `gorm:"not null;default:15;column:time_limit" json:"time_limit"` // minutes
	PassingScore float64                       `gorm:"not null;default:70;column:passing_score" json:"passing_score"`
	CreatedBy    uuid.UUID                     `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsActive     bool                          `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt    time.Time                     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                     `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt                `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

// SubmittedAnswer is one learner answer in a quiz submission.
type SubmittedAnswer struct {
	QuestionID      uuid.UUID   `json:"questionId" binding:"required"`
	SelectedAnswers []uuid.UUID `json:"selectedAnswers"`
}

// AnswerResult is the stored per-question outcome of a graded submission.
type AnswerResult struct {
	QuestionID      uuid.UUID   `json:"question_id"`
	SelectedAnswers []uuid.UUID `json:"selected_answers"`
	IsCorrect       bool        `json:"is_correct"`
}
