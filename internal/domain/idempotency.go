// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed donation
// request, keyed by (donator_email, campaign_id, key). It enables safe client
// retries of ledger inserts: a replayed POST with the same Idempotency-Key
// returns the originally inserted payment instead of appending a duplicate.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	DonatorEmail string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_donator_campaign_key,priority:1"`
	CampaignID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_donator_campaign_key,priority:2"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_donator_campaign_key,priority:3"`
	PaymentID    string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
