package models

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProviderSlugInvalid = errors.New("slug must contain only lowercase alphanumerics and internal dashes")

	slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Provider is one recognized subscription service in the catalog. Entries are
// created and edited only through the admin endpoints; the matcher treats the
// catalog as a read-only snapshot supplied per call.
type Provider struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Slug           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	DisplayName    string     `gorm:"type:varchar(255);not null" json:"display_name"`
	LogoPath       *string    `gorm:"type:varchar(500)" json:"logo_path,omitempty"`
	LastVerifiedAt *time.Time `gorm:"index" json:"last_verified_at,omitempty"`
	Notes          *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`

	Subscriptions []Subscription `gorm:"foreignKey:ProviderID;constraint:OnDelete:SET NULL" json:"-"`
}

func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	return p.Validate()
}

func (p *Provider) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	return p.Validate()
}

func (p *Provider) Validate() error {
	if p.DisplayName == "" {
		return errors.New("display name is required")
	}

	if p.Slug == "" {
		return errors.New("slug is required")
	}

	if !slugRegex.MatchString(p.Slug) {
		return ErrProviderSlugInvalid
	}

	return nil
}

// MarkVerified stamps the entry as reviewed by an admin. The timestamp is
// advisory metadata only and is never read by the matching logic.
func (p *Provider) MarkVerified(at time.Time) {
	p.LastVerifiedAt = &at
}

// IsVerified reports whether the entry has ever been reviewed.
func (p *Provider) IsVerified() bool {
	return p.LastVerifiedAt != nil
}

func (p *Provider) TableName() string {
	return "providers"
}
