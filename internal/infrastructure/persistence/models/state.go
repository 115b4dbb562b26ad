// Package models holds the gorm models for the storefront's durable state.
package models

import "time"

// StateTableName is the table holding one row per snapshot key
const StateTableName = "storefront_state"

// StateModel is a single keyed JSON snapshot. Version increments on every write.
type StateModel struct {
	Key       string    `gorm:"column:state_key;type:varchar(64);primaryKey"`
	Data      []byte    `gorm:"column:data;not null"`
	Version   int64     `gorm:"column:version;not null;default:1"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName implements gorm's tabler
func (StateModel) TableName() string {
	return StateTableName
}
