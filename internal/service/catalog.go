package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/plateful/backend/internal/models"
)

// CatalogService serves the read-mostly Tag and Ingredient reference data
// and owns the one-shot CSV bootstrap of the ingredient catalog.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// ListIngredients returns the catalog, optionally filtered by name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// LoadIngredientsCSV populates the ingredient catalog from a two-column
// (name, measurement_unit) CSV file. It skips entirely when the catalog
// already has rows, so re-running the loader is harmless.
func (s *CatalogService) LoadIngredientsCSV(ctx context.Context, path string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("ingredient catalog already has %d rows, skipping load", count)
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open ingredients file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	loaded := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read ingredients file: %w", err)
			}
			name := strings.TrimSpace(record[0])
			unit := strings.TrimSpace(record[1])
			if name == "" {
				continue
			}
			ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
			if err := tx.Create(&ingredient).Error; err != nil {
				return err
			}
			loaded++
		}
	})
	if err != nil {
		return 0, err
	}

	log.Printf("loaded %d ingredients from %s", loaded, path)
	return loaded, nil
}
