package service

import (
	"context"
	"fmt"

	"bookmart/internal/model"
	"bookmart/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	repo   repository.BookRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(repo repository.BookRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// GetAll retrieves all books with pagination.
func (s *catalogService) GetAll(ctx context.Context, limit, offset int) ([]model.Book, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	books, err := s.repo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve books")
		return nil, fmt.Errorf("failed to retrieve books: %w", err)
	}

	return books, nil
}

// GetByID retrieves a single book by ID.
func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("book ID is required")
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to retrieve book")
		return nil, fmt.Errorf("failed to retrieve book: %w", err)
	}

	return book, nil
}
