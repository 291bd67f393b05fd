package models

import (
	"strings"

	"gorm.io/gorm"
)

// Category is a user facing spending category.
//
// Categories seeded from the taxonomy carry the taxonomy's primary and
// detailed labels and are protected. User created categories do not carry
// taxonomy labels.
type Category struct {
	DefaultModel
	Name             string `gorm:"uniqueIndex"`
	Color            string
	Icon             string
	Note             string
	TaxonomyPrimary  string
	TaxonomyDetailed string
	IsDefault        bool
}

func (c Category) Self() string {
	return "Category"
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)

	return nil
}

func (c *Category) BeforeDelete(_ *gorm.DB) error {
	if c.IsDefault {
		return ErrDefaultCategoryProtected
	}

	return nil
}

// AfterDelete nulls out the category reference of the category's
// transactions. Deleting a category never deletes transactions.
func (c *Category) AfterDelete(tx *gorm.DB) error {
	return tx.Model(&Transaction{}).
		Where("category_id = ?", c.ID).
		Updates(map[string]any{"category_id": nil, "category_source": ""}).Error
}
