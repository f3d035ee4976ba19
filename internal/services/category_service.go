package services

import (
	"context"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/models"
)

type CategoryService struct {
	db db.Store
}

func NewCategoryService(store db.Store) *CategoryService {
	return &CategoryService{db: store}
}

func (s *CategoryService) List(ctx context.Context) ([]models.ResourceCategory, error) {
	return s.db.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int) (*models.ResourceCategory, error) {
	c, err := s.db.GetCategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Category not found", "")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in *models.NewCategory) (*models.ResourceCategory, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	c := &models.ResourceCategory{Name: in.Name, Description: in.Description}
	if err := s.db.CreateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "", "Category already exists")
	}
	return c, nil
}
