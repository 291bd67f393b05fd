package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRule assigns a category to transactions whose description or
// merchant matches a glob pattern. Rules win over the structuring oracle's
// category hint.
type CategoryRule struct {
	DefaultModel
	Pattern    string `gorm:"uniqueIndex"` // glob pattern, matched case insensitively
	CategoryID uuid.UUID
	Category   Category `json:"-"`
	Priority   int      // lower numbers match first
}

func (r CategoryRule) Self() string {
	return "CategoryRule"
}

func (r *CategoryRule) BeforeSave(_ *gorm.DB) error {
	r.Pattern = strings.ToLower(strings.TrimSpace(r.Pattern))

	return nil
}
