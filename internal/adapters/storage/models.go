package storage

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// stringArray is a text[] column on Postgres and a TEXT column holding the
// same array literal on SQLite.
type stringArray pq.StringArray

// Value implements driver.Valuer. Nil is stored as an empty array.
func (a stringArray) Value() (driver.Value, error) {
	if a == nil {
		a = stringArray{}
	}

	return pq.StringArray(a).Value()
}

// Scan implements sql.Scanner.
func (a *stringArray) Scan(src any) error {
	return (*pq.StringArray)(a).Scan(src)
}

// GormDBDataType picks the column type per dialect.
func (stringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}

	return "text"
}

type postModel struct {
	ID          string `gorm:"primaryKey;size:36;index:idx_posts_listing,priority:2"`
	Author      string `gorm:"size:128;not null;index"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text;not null"`
	Categories  string
	Tags        stringArray
	Upvoters    stringArray
	Downvoters  stringArray
	Score       int       `gorm:"not null;default:0"`
	Version     int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_posts_listing,priority:1"`
	UpdatedAt   time.Time
}

func (postModel) TableName() string { return "posts" }

type commentModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	PostID     string `gorm:"size:36;not null;index"`
	Author     string `gorm:"size:128;not null"`
	Content    string `gorm:"type:text;not null"`
	Upvoters   stringArray
	Downvoters stringArray
	Score      int   `gorm:"not null;default:0"`
	Version    int64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

func (commentModel) TableName() string { return "comments" }

type profileModel struct {
	Username      string `gorm:"primaryKey;size:128"`
	CurrentStatus string `gorm:"type:text"`
	Conditions    stringArray
	Goals         stringArray
	UpdatedAt     time.Time
}

func (profileModel) TableName() string { return "health_profiles" }

func toPostModel(p *domain.Post) *postModel {
	return &postModel{
		ID:          p.ID,
		Author:      p.Author,
		Title:       p.Title,
		Description: p.Description,
		Categories:  p.Categories,
		Tags:        stringArray(p.Tags),
		Upvoters:    stringArray(p.Votes.Upvoters.Sorted()),
		Downvoters:  stringArray(p.Votes.Downvoters.Sorted()),
		Score:       p.Votes.Score,
		Version:     p.Votes.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m *postModel) toDomain() domain.Post {
	return domain.Post{
		ID:          m.ID,
		Author:      m.Author,
		Title:       m.Title,
		Description: m.Description,
		Categories:  m.Categories,
		Tags:        nonNil(m.Tags),
		Votes:       votable(m.Upvoters, m.Downvoters, m.Score, m.Version),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toCommentModel(c *domain.Comment) *commentModel {
	return &commentModel{
		ID:         c.ID,
		PostID:     c.PostID,
		Author:     c.Author,
		Content:    c.Content,
		Upvoters:   stringArray(c.Votes.Upvoters.Sorted()),
		Downvoters: stringArray(c.Votes.Downvoters.Sorted()),
		Score:      c.Votes.Score,
		Version:    c.Votes.Version,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *commentModel) toDomain() domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		Author:    m.Author,
		Content:   m.Content,
		Votes:     votable(m.Upvoters, m.Downvoters, m.Score, m.Version),
		CreatedAt: m.CreatedAt,
	}
}

func toProfileModel(p *domain.HealthProfile) *profileModel {
	return &profileModel{
		Username:      p.Username,
		CurrentStatus: p.CurrentStatus,
		Conditions:    stringArray(p.Conditions),
		Goals:         stringArray(p.Goals),
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *profileModel) toDomain() *domain.HealthProfile {
	return &domain.HealthProfile{
		Username:      m.Username,
		CurrentStatus: m.CurrentStatus,
		Conditions:    nonNil(m.Conditions),
		Goals:         nonNil(m.Goals),
		UpdatedAt:     m.UpdatedAt,
	}
}

func votable(up, down stringArray, score int, version int64) domain.Votable {
	return domain.Votable{
		Upvoters:   domain.NewVoterSet(up...),
		Downvoters: domain.NewVoterSet(down...),
		Score:      score,
		Version:    version,
	}
}

func nonNil(a stringArray) []string {
	if a == nil {
		return []string{}
	}

	return []string(a)
}
