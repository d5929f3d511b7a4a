package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Certificate is the completion-certificate flag on a progress record.
// Issuance itself happens outside this service; only the flag lives here.
type Certificate struct {
	Issued         bool       `gorm:"column:issued;not null;default:false" json:"issued"`
	IssuedAt       *time.Time `gorm:"column:issued_at" json:"issued_at,omitempty"`
	CertificateURL string     `gorm:"column:url" json:"certificate_url,omitempty"`
}

// UserProgress is the single progress record a user holds per roadmap.
// The idx_user_roadmap unique index is what makes "one record per pair" hold
// even when two starts race.
type UserProgress struct {
	ID                   uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID           `gorm:"type:uuid;not null;index:idx_user_roadmap,unique" json:"user_id"`
	User                 *User               `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RoadmapID            uuid.UUID           `gorm:"type:uuid;not null;index:idx_user_roadmap,unique" json:"roadmap_id"`
	Roadmap              *Roadmap            `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
	StartedAt            time.Time           `gorm:"not null;column:started_at" json:"started_at"`
	LastAccessed         time.Time           `gorm:"not null;column:last_accessed" json:"last_accessed"`
	CompletionPercentage float64             `gorm:"not null;default:0;column:completion_percentage" json:"completion_percentage"`
	IsCompleted          bool                `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	Certificate          Certificate         `gorm:"embedded;embeddedPrefix:certificate_" json:"certificate"`
	CompletedDays        []CompletedDay      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgressID;references:ID" json:"completed_days"`
	CompletedWeeks       []CompletedWeek     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgressID;references:ID" json:"completed_weeks"`
	QuizAttempts         []QuizAttempt       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgressID;references:ID" json:"quiz_attempts"`
	CompletedProjects    []ProjectSubmission `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgressID;references:ID" json:"completed_projects"`
	CreatedAt            time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

type CompletedDay struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID  uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_day,unique" json:"-"`
	WeekNumber  int       `gorm:"not null;index:idx_progress_day,unique;column:week_number" json:"week_number"`
	DayNumber   int       `gorm:"not null;index:idx_progress_day,unique;column:day_number" json:"day_number"`
	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
}

func (CompletedDay) TableName() string { return "progress_completed_day" }

type CompletedWeek struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID  uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_week,unique" json:"-"`
	WeekNumber  int       `gorm:"not null;index:idx_progress_week,unique;column:week_number" json:"week_number"`
	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
}

func (CompletedWeek) TableName() string { return "progress_completed_week" }

// QuizAttempt is the one graded submission a user gets per quiz; retakes are
// rejected and idx_progress_quiz backs that up.
type QuizAttempt struct {
	ID          uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID  uuid.UUID                         `gorm:"type:uuid;not null;index:idx_progress_quiz,unique" json:"-"`
	QuizID      uuid.UUID                         `gorm:"type:uuid;not null;index:idx_progress_quiz,unique;column:quiz_id" json:"quiz_id"`
	Quiz        *Quiz                             `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Score       float64                           `gorm:"not null;column:score" json:"score"`
	Passed      bool                              `gorm:"not null;column:passed" json:"passed"`
	Answers     datatypes.JSONSlice[AnswerResult] `gorm:"column:answers" json:"answers"`
	CompletedAt time.Time                         `gorm:"not null;column:completed_at" json:"completed_at"`
}

func (QuizAttempt) TableName() string { return "progress_quiz_attempt" }

// ProjectSubmission is upserted by week: resubmitting replaces the URL and
// timestamp instead of adding a row.
type ProjectSubmission struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID    uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_project,unique" json:"-"`
	WeekNumber    int       `gorm:"not null;index:idx_progress_project,unique;column:week_number" json:"week_number"`
	SubmissionURL string    `gorm:"not null;column:submission_url" json:"submission_url"`
	Feedback      string    `gorm:"column:feedback" json:"feedback,omitempty"`
	Grade         string    `gorm:"column:grade" json:"grade,omitempty"`
	CompletedAt   time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
}

func (ProjectSubmission) TableName() string { return "progress_project_submission" }
