package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User is an account allowed to administer the catalogue. Password holds a bcrypt hash.
type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
}

func (User) TableName() string { return "users" }

// Resource is a cataloged external AI tool or service.
type Resource struct {
	ID          int                         `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"not null" json:"name"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	URL         string                      `gorm:"column:url;not null" json:"url"`
	Category    string                      `gorm:"index;not null" json:"category"` // free text, not a foreign key
	Tags        datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	IsFeatured  bool                        `gorm:"column:is_featured;not null" json:"isFeatured"`
	IsPopular   bool                        `gorm:"column:is_popular;not null" json:"isPopular"`
	LogoURL     *string                     `gorm:"column:logo_url" json:"logoUrl"`
}

func (Resource) TableName() string { return "resources" }

// Matches reports whether the lower-cased query is a substring of the name,
// the description or any tag, ignoring case.
func (r *Resource) Matches(q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ChatMessage is one persisted chat turn. Timestamp is assigned by the store.
type ChatMessage struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    *int      `gorm:"column:user_id;index" json:"userId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Role      string    `gorm:"not null" json:"role"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

type ResourceCategory struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
}

func (ResourceCategory) TableName() string { return "resource_categories" }

// GeneratedContent is marketing copy produced by an AI provider and kept for reuse.
type GeneratedContent struct {
	ID                 int                         `gorm:"primaryKey" json:"id"`
	Title              string                      `gorm:"not null" json:"title"`
	Summary            string                      `gorm:"type:text;not null" json:"summary"`
	KeyPoints          datatypes.JSONSlice[string] `gorm:"column:key_points;not null" json:"keyPoints"`
	YoutubeScriptIdea  string                      `gorm:"column:youtube_script_idea;type:text;not null" json:"youtubeScriptIdea"`
	FullContent        *string                     `gorm:"column:full_content;type:text" json:"fullContent"`
	Category           string                      `gorm:"index;not null" json:"category"`
	Tags               datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	IsFeatured         bool                        `gorm:"column:is_featured;not null" json:"isFeatured"`
	CreatedAt          time.Time                   `gorm:"column:created_at;not null" json:"createdAt"`
	YoutubeURL         *string                     `gorm:"column:youtube_url" json:"youtubeUrl"`
	RelatedResourceIDs datatypes.JSONSlice[int]    `gorm:"column:related_resource_ids" json:"relatedResourceIds"`
}

func (GeneratedContent) TableName() string { return "generated_content" }

// Matches is the content search predicate: title, summary or script idea, ignoring case.
func (c *GeneratedContent) Matches(q string) bool {
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.Summary), q) ||
		strings.Contains(strings.ToLower(c.YoutubeScriptIdea), q)
}

// HasAnyTag reports whether the content shares at least one tag with tags.
func (c *GeneratedContent) HasAnyTag(tags []string) bool {
	for _, have := range c.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// RelatesToAny reports whether the content links to at least one of the resource ids.
func (c *GeneratedContent) RelatesToAny(ids []int) bool {
	for _, have := range c.RelatedResourceIDs {
		for _, want := range ids {
			if have == want {
				return true
			}
		}
	}
	return false
}

// StringSlice converts a possibly nil slice into a non-nil JSON column value.
func StringSlice(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}
