package kgorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrIdentityNotFound is returned when no identity has the requested ID.
var ErrIdentityNotFound = errors.New("kgorm: identity not found")

// RoleReader loads the roles an identity currently holds.
// It never writes; storing a resolved selection is the caller's concern.
type RoleReader struct {
	db *gorm.DB
}

func NewRoleReader(db *gorm.DB) *RoleReader {
	return &RoleReader{db: db}
}

// GetIdentityRoles returns the roles stored on the identity, or an empty
// slice when the column is empty.
func (r *RoleReader) GetIdentityRoles(ctx context.Context, identityID string) ([]string, error) {
	var ident Identity
	err := r.db.WithContext(ctx).Select("id", "roles").First(&ident, "id = ?", identityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(ident.Roles) == 0 {
		return []string{}, nil
	}

	var roles []string
	if err := json.Unmarshal(ident.Roles, &roles); err != nil {
		return nil, fmt.Errorf("kgorm: failed to parse roles: %w", err)
	}
	return roles, nil
}
