package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bounds shared by cooking_time and per-ingredient amount.
const (
	MinAmount = 1
	MaxAmount = 32000
)

// Tag is admin-managed reference data; the public API only reads it.
type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Name  string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string    `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Ingredient is reference data seeded once from CSV.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Name            string    `gorm:"size:100;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:20;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Recipe struct {
	ID          uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Image       string         `gorm:"size:255" json:"image"`
	Text        string         `gorm:"type:text" json:"text"`
	CookingTime int            `gorm:"not null" json:"cooking_time"`

	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient carries the per-recipe amount. An ingredient appears at
// most once per recipe; the composite index is what enforces it.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int       `gorm:"not null" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
