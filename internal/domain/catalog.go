package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type ProductCategory string

const (
	CategorySensors     ProductCategory = "sensors"
	CategoryBoards      ProductCategory = "boards"
	CategoryModules     ProductCategory = "modules"
	CategoryKits        ProductCategory = "kits"
	CategoryAccessories ProductCategory = "accessories"
)

// ProductCategories lists categories in display order.
var ProductCategories = []ProductCategory{
	CategorySensors,
	CategoryBoards,
	CategoryModules,
	CategoryKits,
	CategoryAccessories,
}

func (c ProductCategory) Valid() bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Course is a purchasable online course. Courses are not stock-limited.
type Course struct {
	ID            string          `json:"id"`
	Key           string          `json:"key,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Instructor    string          `json:"instructor"`
	DurationHours int             `json:"durationHours"`
	Difficulty    Difficulty      `json:"difficulty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Lessons       []Lesson        `json:"lessons,omitempty"`
}

type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	PDFURL      string `json:"pdfUrl,omitempty"`
	Position    int    `json:"position"`
}

// Product is a physical item with a finite stock.
type Product struct {
	ID            string          `json:"id"`
	Key           string          `json:"key,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      ProductCategory `json:"category"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (p Product) IsInStock() bool {
	return p.StockQuantity > 0
}
