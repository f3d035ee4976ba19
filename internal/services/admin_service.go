package services

import (
	"context"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

type AdminService struct {
	db  db.Store
	log *logger.Logger
}

func NewAdminService(store db.Store, log *logger.Logger) *AdminService {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminService{db: store, log: log.With("service", "AdminService")}
}

// ResetDatabase clears the catalogue, chat and generated content, then seeds
// the default categories and resources. Running it twice gives the same state.
func (s *AdminService) ResetDatabase(ctx context.Context) error {
	if err := db.Reset(ctx, s.db); err != nil {
		return err
	}
	s.log.Info("database reset to seed data")
	return nil
}
