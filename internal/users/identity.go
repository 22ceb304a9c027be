// Package users maps authenticated sessions onto canonical template owners.
package users

import "time"

// Identity links a provider login to the owner id that templates are stored under.
type Identity struct {
	Provider    string    `gorm:"column:provider;primaryKey;size:32;not null"`
	Subject     string    `gorm:"column:subject;primaryKey;size:190;not null"`
	OwnerID     string    `gorm:"column:owner_id;size:190;not null;index"`
	Email       string    `gorm:"column:email;size:320"`
	DisplayName string    `gorm:"column:display_name;size:320"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Identity) TableName() string {
	return "owner_identities"
}
