package store

import (
	"context"
	"fmt"

	"cartsync/internal/models"

	"gorm.io/gorm"
)

// GormCredentialResolver reads shop credentials from the shops table.
type GormCredentialResolver struct {
	db *gorm.DB
}

func NewCredentialResolver(db *gorm.DB) *GormCredentialResolver {
	return &GormCredentialResolver{db: db}
}

func (r *GormCredentialResolver) Resolve(ctx context.Context, shopDomain string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("domain = ?", shopDomain).First(&shop).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shop credential: %w", err)
	}
	return &shop, nil
}
