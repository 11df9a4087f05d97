package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop holds the credential minted during installation. The access token is
// created once by the OAuth callback, read on every proxied request, and
// never serialized back out to a client.
type Shop struct {
	ID          string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Domain      string     `json:"domain" gorm:"unique;not null"`
	AccessToken string     `json:"-" gorm:"not null"`
	Scope       string     `json:"scope"`
	InstalledAt *time.Time `json:"installed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
