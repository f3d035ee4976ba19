package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/superfishal-intelligence/backend/internal/models"
)

// MemoryStore keeps every table in a map. Used for tests and when no
// database is configured. Records are copied in and out so callers never
// share memory with the store.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[int]models.User
	resources  map[int]models.Resource
	messages   map[int]models.ChatMessage
	categories map[int]models.ResourceCategory
	content    map[int]models.GeneratedContent

	nextUser, nextResource, nextMessage, nextCategory, nextContent int

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int]models.User),
		resources:  make(map[int]models.Resource),
		messages:   make(map[int]models.ChatMessage),
		categories: make(map[int]models.ResourceCategory),
		content:    make(map[int]models.GeneratedContent),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Close() error { return nil }

// users

func (s *MemoryStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	s.users[user.ID] = *user
	return nil
}

// resources

func (s *MemoryStore) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.filterResources(func(*models.Resource) bool { return true }, 0), nil
}

func (s *MemoryStore) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Tags = cloneStrings(r.Tags)
	return &r, nil
}

func (s *MemoryStore) ListResourcesByCategory(ctx context.Context, category string) ([]models.Resource, error) {
	return s.filterResources(func(r *models.Resource) bool { return r.Category == category }, 0), nil
}

func (s *MemoryStore) ListPopularResources(ctx context.Context, limit int) ([]models.Resource, error) {
	return s.filterResources(func(r *models.Resource) bool { return r.IsPopular }, limit), nil
}

func (s *MemoryStore) ListFeaturedResources(ctx context.Context, limit int) ([]models.Resource, error) {
	return s.filterResources(func(r *models.Resource) bool { return r.IsFeatured }, limit), nil
}

func (s *MemoryStore) SearchResources(ctx context.Context, query string) ([]models.Resource, error) {
	q := strings.ToLower(query)
	return s.filterResources(func(r *models.Resource) bool { return r.Matches(q) }, 0), nil
}

func (s *MemoryStore) CreateResource(ctx context.Context, r *models.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextResource++
	r.ID = s.nextResource
	r.Tags = models.StringSlice(r.Tags)
	stored := *r
	stored.Tags = cloneStrings(r.Tags)
	s.resources[r.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateResource(ctx context.Context, id int, patch *models.ResourcePatch) (*models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&r)
	r.Tags = cloneStrings(r.Tags)
	s.resources[id] = r
	out := r
	out.Tags = cloneStrings(r.Tags)
	return &out, nil
}

func (s *MemoryStore) SwapResourceLogo(ctx context.Context, id int, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok || r.LogoURL == nil || *r.LogoURL != from {
		return false, nil
	}
	r.LogoURL = &to
	s.resources[id] = r
	return true, nil
}

func (s *MemoryStore) DeleteResource(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[id]; !ok {
		return ErrNotFound
	}
	delete(s.resources, id)
	return nil
}

func (s *MemoryStore) filterResources(keep func(*models.Resource) bool, limit int) []models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if keep(&r) {
			r.Tags = cloneStrings(r.Tags)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitSlice(out, limit)
}

// chat

func (s *MemoryStore) ListChatMessages(ctx context.Context, filter ChatFilter) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, 0)
	for _, m := range s.messages {
		switch {
		case filter.UserID != nil:
			if m.UserID == nil || *m.UserID != *filter.UserID {
				continue
			}
		case filter.Anonymous:
			if m.UserID != nil {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) CreateChatMessage(ctx context.Context, m *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessage++
	m.ID = s.nextMessage
	m.Timestamp = s.now()
	s.messages[m.ID] = *m
	return nil
}

// categories

func (s *MemoryStore) ListCategories(ctx context.Context) ([]models.ResourceCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ResourceCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id int) (*models.ResourceCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) GetCategoryByName(ctx context.Context, name string) (*models.ResourceCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCategory(ctx context.Context, c *models.ResourceCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return ErrDuplicate
		}
	}
	s.nextCategory++
	c.ID = s.nextCategory
	s.categories[c.ID] = *c
	return nil
}

// generated content

func (s *MemoryStore) ListContent(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(func(*models.GeneratedContent) bool { return true }, limit), nil
}

func (s *MemoryStore) GetContent(ctx context.Context, id int) (*models.GeneratedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneContent(c)
	return &c, nil
}

func (s *MemoryStore) ListContentByCategory(ctx context.Context, category string, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(func(c *models.GeneratedContent) bool { return c.Category == category }, limit), nil
}

func (s *MemoryStore) ListFeaturedContent(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(func(c *models.GeneratedContent) bool { return c.IsFeatured }, limit), nil
}

func (s *MemoryStore) ListContentByTags(ctx context.Context, tags []string, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(func(c *models.GeneratedContent) bool { return c.HasAnyTag(tags) }, limit), nil
}

func (s *MemoryStore) ListRelatedContent(ctx context.Context, resourceIDs []int, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(func(c *models.GeneratedContent) bool { return c.RelatesToAny(resourceIDs) }, limit), nil
}

func (s *MemoryStore) SearchContent(ctx context.Context, query string) ([]models.GeneratedContent, error) {
	q := strings.ToLower(query)
	return s.filterContent(func(c *models.GeneratedContent) bool { return c.Matches(q) }, 0), nil
}

func (s *MemoryStore) CreateContent(ctx context.Context, c *models.GeneratedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextContent++
	c.ID = s.nextContent
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.KeyPoints = models.StringSlice(c.KeyPoints)
	c.Tags = models.StringSlice(c.Tags)
	s.content[c.ID] = cloneContent(*c)
	return nil
}

func (s *MemoryStore) UpdateContent(ctx context.Context, id int, patch *models.ContentPatch) (*models.GeneratedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&c)
	s.content[id] = cloneContent(c)
	out := cloneContent(c)
	return &out, nil
}

func (s *MemoryStore) DeleteContent(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[id]; !ok {
		return ErrNotFound
	}
	delete(s.content, id)
	return nil
}

func (s *MemoryStore) filterContent(keep func(*models.GeneratedContent) bool, limit int) []models.GeneratedContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GeneratedContent, 0, len(s.content))
	for _, c := range s.content {
		if keep(&c) {
			out = append(out, cloneContent(c))
		}
	}
	sortNewestFirst(out)
	return limitSlice(out, limit)
}

func (s *MemoryStore) ClearCatalog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = make(map[int]models.Resource)
	s.messages = make(map[int]models.ChatMessage)
	s.categories = make(map[int]models.ResourceCategory)
	s.content = make(map[int]models.GeneratedContent)
	return nil
}

func sortNewestFirst(items []models.GeneratedContent) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cloneStrings[S ~[]string](in S) S {
	if in == nil {
		return nil
	}
	out := make(S, len(in))
	copy(out, in)
	return out
}

func cloneContent(c models.GeneratedContent) models.GeneratedContent {
	c.KeyPoints = cloneStrings(c.KeyPoints)
	c.Tags = cloneStrings(c.Tags)
	if c.RelatedResourceIDs != nil {
		ids := make([]int, len(c.RelatedResourceIDs))
		copy(ids, c.RelatedResourceIDs)
		c.RelatedResourceIDs = ids
	}
	return c
}
