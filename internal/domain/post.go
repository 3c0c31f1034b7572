package domain

import "time"

const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
	PostStatusArchived  = "ARCHIVED"
)

type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Slug        string     `gorm:"size:255;not null;index" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Excerpt     string     `gorm:"size:500" json:"excerpt,omitempty"`
	Status      string     `gorm:"size:16;not null;default:DRAFT;index:idx_posts_status" json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	default:
		return false
	}
}
