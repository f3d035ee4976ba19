package models

import (
	"strings"

	"gorm.io/datatypes"
)

// NewResource is the POST /api/resources body.
type NewResource struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	URL         string   `json:"url" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Tags        []string `json:"tags" validate:"required"`
	IsFeatured  bool     `json:"isFeatured"`
	IsPopular   bool     `json:"isPopular"`
	LogoURL     *string  `json:"logoUrl"`
}

func (n *NewResource) ToResource() *Resource {
	return &Resource{
		Name:        n.Name,
		Description: n.Description,
		URL:         n.URL,
		Category:    n.Category,
		Tags:        StringSlice(n.Tags),
		IsFeatured:  n.IsFeatured,
		IsPopular:   n.IsPopular,
		LogoURL:     n.LogoURL,
	}
}

// ResourcePatch is a partial update. Nil fields are left untouched.
type ResourcePatch struct {
	Name        *string   `json:"name" validate:"omitempty,min=1"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	URL         *string   `json:"url" validate:"omitempty,min=1"`
	Category    *string   `json:"category" validate:"omitempty,min=1"`
	Tags        *[]string `json:"tags"`
	IsFeatured  *bool     `json:"isFeatured"`
	IsPopular   *bool     `json:"isPopular"`
	LogoURL     *string   `json:"logoUrl"`
}

func (p *ResourcePatch) Apply(r *Resource) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Tags != nil {
		r.Tags = StringSlice(*p.Tags)
	}
	if p.IsFeatured != nil {
		r.IsFeatured = *p.IsFeatured
	}
	if p.IsPopular != nil {
		r.IsPopular = *p.IsPopular
	}
	if p.LogoURL != nil {
		r.LogoURL = p.LogoURL
	}
}

// NewChatMessage is the POST /api/chat body.
type NewChatMessage struct {
	UserID  *int   `json:"userId"`
	Content string `json:"content" validate:"required"`
	Role    string `json:"role" validate:"required"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// NewGeneratedContent is the POST /api/content body.
type NewGeneratedContent struct {
	Title              string   `json:"title" validate:"required"`
	Summary            string   `json:"summary" validate:"required"`
	KeyPoints          []string `json:"keyPoints" validate:"required"`
	YoutubeScriptIdea  string   `json:"youtubeScriptIdea" validate:"required"`
	FullContent        *string  `json:"fullContent"`
	Category           string   `json:"category" validate:"required"`
	Tags               []string `json:"tags" validate:"required"`
	IsFeatured         bool     `json:"isFeatured"`
	YoutubeURL         *string  `json:"youtubeUrl"`
	RelatedResourceIDs []int    `json:"relatedResourceIds"`
}

func (n *NewGeneratedContent) ToContent() *GeneratedContent {
	c := &GeneratedContent{
		Title:             n.Title,
		Summary:           n.Summary,
		KeyPoints:         StringSlice(n.KeyPoints),
		YoutubeScriptIdea: n.YoutubeScriptIdea,
		FullContent:       n.FullContent,
		Category:          n.Category,
		Tags:              StringSlice(n.Tags),
		IsFeatured:        n.IsFeatured,
		YoutubeURL:        n.YoutubeURL,
	}
	if n.RelatedResourceIDs != nil {
		c.RelatedResourceIDs = datatypes.JSONSlice[int](n.RelatedResourceIDs)
	}
	return c
}

// ContentPatch is a partial update of generated content.
type ContentPatch struct {
	Title              *string   `json:"title" validate:"omitempty,min=1"`
	Summary            *string   `json:"summary" validate:"omitempty,min=1"`
	KeyPoints          *[]string `json:"keyPoints"`
	YoutubeScriptIdea  *string   `json:"youtubeScriptIdea"`
	FullContent        *string   `json:"fullContent"`
	Category           *string   `json:"category" validate:"omitempty,min=1"`
	Tags               *[]string `json:"tags"`
	IsFeatured         *bool     `json:"isFeatured"`
	YoutubeURL         *string   `json:"youtubeUrl"`
	RelatedResourceIDs *[]int    `json:"relatedResourceIds"`
}

func (p *ContentPatch) Apply(c *GeneratedContent) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.KeyPoints != nil {
		c.KeyPoints = StringSlice(*p.KeyPoints)
	}
	if p.YoutubeScriptIdea != nil {
		c.YoutubeScriptIdea = *p.YoutubeScriptIdea
	}
	if p.FullContent != nil {
		c.FullContent = p.FullContent
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Tags != nil {
		c.Tags = StringSlice(*p.Tags)
	}
	if p.IsFeatured != nil {
		c.IsFeatured = *p.IsFeatured
	}
	if p.YoutubeURL != nil {
		c.YoutubeURL = p.YoutubeURL
	}
	if p.RelatedResourceIDs != nil {
		c.RelatedResourceIDs = datatypes.JSONSlice[int](*p.RelatedResourceIDs)
	}
}

// GenerateContentRequest is the POST /api/content/generate body. Every field is optional.
type GenerateContentRequest struct {
	Topic              string   `json:"topic"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	IsFeatured         bool     `json:"isFeatured"`
	RelatedResourceIDs []int    `json:"relatedResourceIds"`
	Provider           string   `json:"provider" validate:"omitempty,oneof=huggingface anthropic perplexity gemini"`
}

// NormalizeProvider trims and lower-cases a provider name so the oneof check
// accepts any casing.
func NormalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type ScriptRequest struct {
	Topic    string `json:"topic" validate:"required"`
	Provider string `json:"provider" validate:"omitempty,oneof=huggingface anthropic perplexity gemini"`
}

// ScriptPackage is a generated YouTube script bundle. It is returned, not stored.
type ScriptPackage struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Script     string   `json:"script"`
	KeyPoints  []string `json:"keyPoints"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Provider   string   `json:"provider"`
	Fallback   bool     `json:"fallback"`
}

// AnalyzeResourcesRequest is the POST /api/resources/analyze body.
type AnalyzeResourcesRequest struct {
	Query    string `json:"query" validate:"required"`
	Provider string `json:"provider" validate:"omitempty,oneof=huggingface anthropic perplexity gemini"`
}

type AnalyzedResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ResourceAnalysis is a model's pick of resources for a query. It is returned, not stored.
type ResourceAnalysis struct {
	Resources []AnalyzedResource `json:"resources"`
	Analysis  string             `json:"analysis"`
	Provider  string             `json:"provider"`
	Fallback  bool               `json:"fallback"`
}

type Credentials struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}
