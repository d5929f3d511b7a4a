package types

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SupplementalResource points a learner at outside reading for a day.
type SupplementalResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"` // blog, video, guide, article, other
}

type DayContent struct {
	Title                 string                 `json:"title"`
	Description           string                 `json:"description"`
	VideoURL              string                 `json:"video_url,omitempty"`
	ArticleSummary        string                 `json:"article_summary,omitempty"`
	CodingChallenge       string                 `json:"coding_challenge,omitempty"`
	SupplementalResources []SupplementalResource `json:"supplemental_resources,omitempty"`
}

type WeekendProject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	StretchGoals []string `json:"stretch_goals,omitempty"`
}

// Week is one curriculum week. Days are positional: day N of a week is
// Days[N-1].
type Week struct {
	WeekNumber     int             `json:"week_number"`
	Title          string          `json:"title"`
	Overview       string          `json:"overview"`
	Days           []DayContent    `json:"days"`
	WeekendProject *WeekendProject `json:"weekend_project,omitempty"`
}

// Roadmap is a published curriculum. The week/day structure is embedded as a
// JSON document; the progress engine only ever reads it as a snapshot.
type Roadmap struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                      `gorm:"uniqueIndex;not null;column:title" json:"title"`
	Slug          string                      `gorm:"uniqueIndex;column:slug" json:"slug"`
	Description   string                      `gorm:"not null;column:description" json:"description"`
	Category      string                      `gorm:"not null;column:category" json:"category"`
	Level         string                      `gorm:"not null;column:level" json:"level"`
	Duration      string                      `gorm:"not null;column:duration" json:"duration"`
	Weeks         datatypes.JSONSlice[Week]   `gorm:"column:weeks" json:"weeks"`
	Prerequisites datatypes.JSONSlice[string] `gorm:"column:prerequisites" json:"prerequisites"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedBy     uuid.UUID                   `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsPublished   bool                        `gorm:"not null;default:false;column:is_published" json:"is_published"`
	CreatedAt     time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"deleted_at,omitempty"`
}

func (Roadmap) TableName() string { return "roadmap" }

var slugStrip = regexp.MustCompile(`[^\w ]+`)

// Slugify mirrors how roadmap slugs have always been derived from titles.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), "-")
}

func (r *Roadmap) BeforeSave(tx *gorm.DB) error {
	if r.Title != "" {
		r.Slug = Slugify(r.Title)
	}
	return nil
}
