package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well known setting keys for the financial profile.
const (
	SettingCreditLimit         = "credit_limit"
	SettingAPR                 = "apr_percentage"
	SettingStatementClosingDay = "statement_closing_day"
	SettingMinimumPaymentRate  = "minimum_payment_percent"
	SettingSavingsGoals        = "savings_goals"
)

// AppSetting is a typed key/value row for financial profile parameters and
// other global configuration. Last write wins.
type AppSetting struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	ValueType string // "string", "number" or "json"
	Timestamps
}

func (s AppSetting) Self() string {
	return "AppSetting"
}

func (s *AppSetting) BeforeSave(_ *gorm.DB) error {
	s.Key = strings.TrimSpace(s.Key)
	if s.ValueType == "" {
		s.ValueType = "string"
	}

	return nil
}

// UpsertSetting writes a setting, replacing any previous value.
func UpsertSetting(tx *gorm.DB, setting AppSetting) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&setting).Error
}

// GetSetting reads a setting. A missing key returns ErrResourceNotFound.
func GetSetting(tx *gorm.DB, key string) (AppSetting, error) {
	var setting AppSetting
	err := tx.First(&setting, "key = ?", key).Error
	return setting, err
}

// SettingDecimal reads a numeric setting, falling back to the given
// default when the key is missing or not a number.
func SettingDecimal(tx *gorm.DB, key string, fallback decimal.Decimal) decimal.Decimal {
	setting, err := GetSetting(tx, key)
	if err != nil {
		if !errors.Is(err, ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback
		}
		return fallback
	}

	value, err := decimal.NewFromString(setting.Value)
	if err != nil {
		return fallback
	}

	return value
}
