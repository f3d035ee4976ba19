package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/core/logo_mirror"
	objectclient "github.com/superfishal-intelligence/backend/internal/core/object-client"
	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

const (
	DefaultPopularLimit  = 10
	DefaultFeaturedLimit = 10
)

const msgResourceNotFound = "Resource not found"

type ResourceService struct {
	db      db.Store
	storage objectclient.ObjectClient
	mirror  logo_mirror.Mirror
	log     *logger.Logger
}

// NewResourceService wires the catalogue. storage and mirror are optional;
// without storage logo uploads answer 503 and external logos stay as given.
func NewResourceService(store db.Store, storage objectclient.ObjectClient, mirror logo_mirror.Mirror, log *logger.Logger) *ResourceService {
	if log == nil {
		log = logger.Nop()
	}
	return &ResourceService{db: store, storage: storage, mirror: mirror, log: log.With("service", "ResourceService")}
}

func (s *ResourceService) List(ctx context.Context) ([]models.Resource, error) {
	return s.db.ListResources(ctx)
}

func (s *ResourceService) Get(ctx context.Context, id int) (*models.Resource, error) {
	r, err := s.db.GetResource(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgResourceNotFound, "")
	}
	return r, nil
}

func (s *ResourceService) ByCategory(ctx context.Context, category string) ([]models.Resource, error) {
	return s.db.ListResourcesByCategory(ctx, category)
}

func (s *ResourceService) Popular(ctx context.Context, limit int) ([]models.Resource, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return s.db.ListPopularResources(ctx, limit)
}

func (s *ResourceService) Featured(ctx context.Context, limit int) ([]models.Resource, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return s.db.ListFeaturedResources(ctx, limit)
}

// Search matches name, description and tags, ignoring case.
func (s *ResourceService) Search(ctx context.Context, query string) ([]models.Resource, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.BadRequest("Search query is required")
	}
	return s.db.SearchResources(ctx, query)
}

func (s *ResourceService) Create(ctx context.Context, in *models.NewResource) (*models.Resource, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	r := in.ToResource()
	if err := s.db.CreateResource(ctx, r); err != nil {
		return nil, err
	}
	s.scheduleMirror(r)
	return r, nil
}

func (s *ResourceService) Update(ctx context.Context, id int, patch *models.ResourcePatch) (*models.Resource, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}
	r, err := s.db.UpdateResource(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, msgResourceNotFound, "")
	}
	if patch.LogoURL != nil {
		s.scheduleMirror(r)
	}
	return r, nil
}

// Delete removes the resource and, best effort, a logo stored in our bucket.
func (s *ResourceService) Delete(ctx context.Context, id int) error {
	r, err := s.db.GetResource(ctx, id)
	if err != nil {
		return storeErr(err, msgResourceNotFound, "")
	}
	if err := s.db.DeleteResource(ctx, id); err != nil {
		return storeErr(err, msgResourceNotFound, "")
	}
	s.dropStoredLogo(ctx, r.LogoURL)
	return nil
}

// UploadLogo stores an image for the resource and points logoUrl at it.
func (s *ResourceService) UploadLogo(ctx context.Context, id int, filename, contentType string, data io.Reader) (*models.Resource, error) {
	if s.storage == nil {
		return nil, apierr.Unavailable("Object storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apierr.BadRequest("Logo must be an image")
	}
	current, err := s.db.GetResource(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgResourceNotFound, "")
	}

	key := logoKey(id, filename)
	url, err := s.storage.UploadFile(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload logo: %w", err)
	}
	r, err := s.db.UpdateResource(ctx, id, &models.ResourcePatch{LogoURL: &url})
	if err != nil {
		_ = s.storage.DeleteFile(ctx, key)
		return nil, storeErr(err, msgResourceNotFound, "")
	}
	s.dropStoredLogo(ctx, current.LogoURL)
	return r, nil
}

func (s *ResourceService) scheduleMirror(r *models.Resource) {
	if s.mirror == nil || s.storage == nil || r.LogoURL == nil || *r.LogoURL == "" {
		return
	}
	if _, ours := s.storage.KeyFromURL(*r.LogoURL); ours {
		return
	}
	s.mirror.Enqueue(logo_mirror.Job{ResourceID: r.ID, SourceURL: *r.LogoURL})
}

func (s *ResourceService) dropStoredLogo(ctx context.Context, logoURL *string) {
	if s.storage == nil || logoURL == nil {
		return
	}
	key, ours := s.storage.KeyFromURL(*logoURL)
	if !ours {
		return
	}
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		s.log.Warn("failed to delete stored logo", "key", key, "error", err)
	}
}

// logoKey keeps uploads under the same prefix the mirror uses.
func logoKey(id int, filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if len(ext) > 5 {
		ext = ""
	}
	return path.Join("resources", fmt.Sprint(id), "logo-"+uuid.NewString()+ext)
}
