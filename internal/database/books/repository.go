// Package books provides database operations for imported book records.
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readinglog/internal/entities"
)

// insertBatchSize bounds the number of rows per INSERT statement.
const insertBatchSize = 100

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ExistingKeys reads only the title and author of the user's books.
func (r *Repository) ExistingKeys(ctx context.Context, userID uint) ([]entities.TitleAuthor, error) {
	var keys []entities.TitleAuthor
	err := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Select("title", "author").
		Where("user_id = ?", userID).
		Scan(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read book keys for user %d: %w", userID, err)
	}
	return keys, nil
}

// InsertBooks stores books for the user in one transaction and returns the
// number of rows written.
func (r *Repository) InsertBooks(ctx context.Context, userID uint, books []entities.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	for i := range books {
		books[i].UserID = userID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&books, insertBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert %d books: %w", len(books), err)
	}
	return len(books), nil
}

// ListBooks returns the user's books, most recently started first.
func (r *Repository) ListBooks(ctx context.Context, userID uint, favoritesOnly bool) ([]entities.Book, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if favoritesOnly {
		query = query.Where("is_favorite = ?", true)
	}

	var books []entities.Book
	if err := query.Order("reading_started DESC").Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books for user %d: %w", userID, err)
	}
	return books, nil
}

func (r *Repository) CountBooks(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
