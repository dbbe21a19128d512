package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/avolkov/plateful/backend/internal/models"
)

// RunMigrations brings the schema up to date, including the composite unique
// indexes the relation tables rely on for Conflict detection.
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running schema migration")
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
}
