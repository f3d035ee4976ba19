package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/superfishal-intelligence/backend/internal/config"
	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

// GormStore is the persistent Store. Production runs it on Postgres through
// pgx; tests run it on SQLite.
type GormStore struct {
	db *gorm.DB
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// NewStore picks the Store implementation named by cfg.StorageDriver.
func NewStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logg.Info("using in-memory store")
		return NewMemoryStore(), nil
	case config.StoragePostgres:
		return NewDatabaseClient(ctx, cfg, logg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewDatabaseClient opens the Postgres pool, wraps it in gorm and migrates the schema.
func NewDatabaseClient(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*GormStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(logg))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	store, err := NewGormStore(gdb)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logg.Info("connected to postgres", "driver", "pgx")
	return store, nil
}

func gormConfig(logg *logger.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(logg, gormLogger.Warn, time.Second),
	}
}

// NewGormStore migrates the schema on an already opened gorm handle.
func NewGormStore(gdb *gorm.DB) (*GormStore, error) {
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Resource{},
		&models.ChatMessage{},
		&models.ResourceCategory{},
		&models.GeneratedContent{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: gdb}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func applyLimit(q *gorm.DB, limit int) *gorm.DB {
	if limit > 0 {
		return q.Limit(limit)
	}
	return q
}

// users

func (s *GormStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// resources

func (s *GormStore) ListResources(ctx context.Context) ([]models.Resource, error) {
	out := []models.Resource{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	var r models.Resource
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) ListResourcesByCategory(ctx context.Context, category string) ([]models.Resource, error) {
	out := []models.Resource{}
	err := s.db.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) ListPopularResources(ctx context.Context, limit int) ([]models.Resource, error) {
	out := []models.Resource{}
	q := s.db.WithContext(ctx).Where("is_popular = ?", true).Order("id ASC")
	err := applyLimit(q, limit).Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) ListFeaturedResources(ctx context.Context, limit int) ([]models.Resource, error) {
	out := []models.Resource{}
	q := s.db.WithContext(ctx).Where("is_featured = ?", true).Order("id ASC")
	err := applyLimit(q, limit).Find(&out).Error
	return out, translate(err)
}

// SearchResources filters in Go: tags live in a JSON column whose text form
// would let a query match brackets and quotes.
func (s *GormStore) SearchResources(ctx context.Context, query string) ([]models.Resource, error) {
	all, err := s.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]models.Resource, 0)
	for i := range all {
		if all[i].Matches(q) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *GormStore) CreateResource(ctx context.Context, r *models.Resource) error {
	if r == nil {
		return errors.New("nil resource")
	}
	r.Tags = models.StringSlice(r.Tags)
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) UpdateResource(ctx context.Context, id int, patch *models.ResourcePatch) (*models.Resource, error) {
	var r models.Resource
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, id).Error; err != nil {
			return err
		}
		patch.Apply(&r)
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) SwapResourceLogo(ctx context.Context, id int, from, to string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND logo_url = ?", id, from).
		Update("logo_url", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) DeleteResource(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&models.Resource{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// chat

func (s *GormStore) ListChatMessages(ctx context.Context, filter ChatFilter) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}
	q := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order("id ASC")
	switch {
	case filter.UserID != nil:
		q = q.Where("user_id = ?", *filter.UserID)
	case filter.Anonymous:
		q = q.Where("user_id IS NULL")
	}
	return out, translate(q.Find(&out).Error)
}

func (s *GormStore) CreateChatMessage(ctx context.Context, m *models.ChatMessage) error {
	if m == nil {
		return errors.New("nil chat message")
	}
	m.Timestamp = time.Now().UTC()
	return translate(s.db.WithContext(ctx).Create(m).Error)
}

// categories

func (s *GormStore) ListCategories(ctx context.Context) ([]models.ResourceCategory, error) {
	out := []models.ResourceCategory{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetCategory(ctx context.Context, id int) (*models.ResourceCategory, error) {
	var c models.ResourceCategory
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) GetCategoryByName(ctx context.Context, name string) (*models.ResourceCategory, error) {
	var c models.ResourceCategory
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.ResourceCategory) error {
	if c == nil {
		return errors.New("nil category")
	}
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

// generated content

func (s *GormStore) newestContent(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
}

func (s *GormStore) ListContent(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	out := []models.GeneratedContent{}
	err := applyLimit(s.newestContent(ctx), limit).Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) GetContent(ctx context.Context, id int) (*models.GeneratedContent, error) {
	var c models.GeneratedContent
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) ListContentByCategory(ctx context.Context, category string, limit int) ([]models.GeneratedContent, error) {
	out := []models.GeneratedContent{}
	q := s.newestContent(ctx).Where("category = ?", category)
	return out, translate(applyLimit(q, limit).Find(&out).Error)
}

func (s *GormStore) ListFeaturedContent(ctx context.Context, limit int) ([]models.GeneratedContent, error) {
	out := []models.GeneratedContent{}
	q := s.newestContent(ctx).Where("is_featured = ?", true)
	return out, translate(applyLimit(q, limit).Find(&out).Error)
}

func (s *GormStore) ListContentByTags(ctx context.Context, tags []string, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(ctx, func(c *models.GeneratedContent) bool { return c.HasAnyTag(tags) }, limit)
}

func (s *GormStore) ListRelatedContent(ctx context.Context, resourceIDs []int, limit int) ([]models.GeneratedContent, error) {
	return s.filterContent(ctx, func(c *models.GeneratedContent) bool { return c.RelatesToAny(resourceIDs) }, limit)
}

func (s *GormStore) SearchContent(ctx context.Context, query string) ([]models.GeneratedContent, error) {
	q := strings.ToLower(query)
	return s.filterContent(ctx, func(c *models.GeneratedContent) bool { return c.Matches(q) }, 0)
}

func (s *GormStore) filterContent(ctx context.Context, keep func(*models.GeneratedContent) bool, limit int) ([]models.GeneratedContent, error) {
	all, err := s.ListContent(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := make([]models.GeneratedContent, 0)
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return limitSlice(out, limit), nil
}

func (s *GormStore) CreateContent(ctx context.Context, c *models.GeneratedContent) error {
	if c == nil {
		return errors.New("nil content")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.KeyPoints = models.StringSlice(c.KeyPoints)
	c.Tags = models.StringSlice(c.Tags)
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) UpdateContent(ctx context.Context, id int, patch *models.ContentPatch) (*models.GeneratedContent, error) {
	var c models.GeneratedContent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		patch.Apply(&c)
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) DeleteContent(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&models.GeneratedContent{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ClearCatalog(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.GeneratedContent{},
			&models.ChatMessage{},
			&models.Resource{},
			&models.ResourceCategory{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
