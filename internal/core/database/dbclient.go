package db

import (
	"context"
	"errors"

	"github.com/superfishal-intelligence/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ChatFilter scopes chat history reads. A nil UserID with Anonymous unset
// returns every message.
type ChatFilter struct {
	UserID    *int
	Anonymous bool
}

// Store defines all persistence operations the services need.
// List results are ordered: resources and categories by ascending id,
// chat messages oldest first, generated content newest first.
// A limit <= 0 means no limit.
type Store interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	ListResources(ctx context.Context) ([]models.Resource, error)
	GetResource(ctx context.Context, id int) (*models.Resource, error)
	ListResourcesByCategory(ctx context.Context, category string) ([]models.Resource, error)
	ListPopularResources(ctx context.Context, limit int) ([]models.Resource, error)
	ListFeaturedResources(ctx context.Context, limit int) ([]models.Resource, error)
	SearchResources(ctx context.Context, query string) ([]models.Resource, error)
	CreateResource(ctx context.Context, r *models.Resource) error
	UpdateResource(ctx context.Context, id int, patch *models.ResourcePatch) (*models.Resource, error)
	DeleteResource(ctx context.Context, id int) error
	// SwapResourceLogo sets logoUrl to to only while it still equals from. It
	// reports whether the swap happened.
	SwapResourceLogo(ctx context.Context, id int, from, to string) (bool, error)

	ListChatMessages(ctx context.Context, filter ChatFilter) ([]models.ChatMessage, error)
	CreateChatMessage(ctx context.Context, m *models.ChatMessage) error

	ListCategories(ctx context.Context) ([]models.ResourceCategory, error)
	GetCategory(ctx context.Context, id int) (*models.ResourceCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*models.ResourceCategory, error)
	CreateCategory(ctx context.Context, c *models.ResourceCategory) error

	ListContent(ctx context.Context, limit int) ([]models.GeneratedContent, error)
	GetContent(ctx context.Context, id int) (*models.GeneratedContent, error)
	ListContentByCategory(ctx context.Context, category string, limit int) ([]models.GeneratedContent, error)
	ListFeaturedContent(ctx context.Context, limit int) ([]models.GeneratedContent, error)
	ListContentByTags(ctx context.Context, tags []string, limit int) ([]models.GeneratedContent, error)
	ListRelatedContent(ctx context.Context, resourceIDs []int, limit int) ([]models.GeneratedContent, error)
	SearchContent(ctx context.Context, query string) ([]models.GeneratedContent, error)
	CreateContent(ctx context.Context, c *models.GeneratedContent) error
	UpdateContent(ctx context.Context, id int, patch *models.ContentPatch) (*models.GeneratedContent, error)
	DeleteContent(ctx context.Context, id int) error

	// ClearCatalog removes resources, categories, chat messages and generated
	// content. Users survive.
	ClearCatalog(ctx context.Context) error

	Close() error
}
