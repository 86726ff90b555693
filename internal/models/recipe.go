// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StepItem is one instruction entry with text and an optional image.
// It is the canonical step representation; the flat Steps list is kept
// for older rows and derived clients.
type StepItem struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

// StringList stores an ordered list of strings as a jsonb column.
type StringList []string

// Value implements driver.Valuer for StringList.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StringList.
func (l *StringList) Scan(value interface{}) error {
	return scanJSONColumn(value, l)
}

// StepItemList stores an ordered list of StepItems as a jsonb column.
type StepItemList []StepItem

// Value implements driver.Valuer for StepItemList.
func (l StepItemList) Value() (driver.Value, error) {
	if l == nil {
		l = StepItemList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for StepItemList.
func (l *StepItemList) Scan(value interface{}) error {
	return scanJSONColumn(value, l)
}

func scanJSONColumn(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Recipe is the sole domain entity: a user-owned recipe with ordered
// ingredients and instructions.
type Recipe struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Ingredients StringList     `gorm:"type:jsonb" json:"ingredients"`
	Steps       StringList     `gorm:"type:jsonb" json:"steps"`
	StepItems   StepItemList   `gorm:"type:jsonb" json:"step_items"`
	Tags        StringList     `gorm:"type:jsonb" json:"tags"`
	ImageURL    *string        `json:"image_url"`
	PrepTime    uint           `json:"prep_time"`
	CookTime    uint           `json:"cook_time"`
	Servings    uint           `json:"servings"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	AuthorName  string         `json:"author_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveSteps returns the instruction list to render: StepItems when
// present (canonical), else the legacy flat Steps list.
func (r *Recipe) EffectiveSteps() []StepItem {
	if len(r.StepItems) > 0 {
		return r.StepItems
	}
	items := make([]StepItem, len(r.Steps))
	for i, text := range r.Steps {
		items[i] = StepItem{Text: text}
	}
	return items
}

// DescriptionText returns the description markup or "" when null.
func (r *Recipe) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}
