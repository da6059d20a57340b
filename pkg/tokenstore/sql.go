package tokenstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/foodbank-client/pkg/db"
	"github.com/angelmondragon/foodbank-client/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend stores tokens in the stored_tokens table (sqlite or postgres).
type SQLBackend struct {
	client  *db.Client
	profile string
}

// NewSQLBackend migrates the token table and returns a backend scoped to profile.
func NewSQLBackend(ctx context.Context, client *db.Client, profile string) (*SQLBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(&models.StoredToken{}); err != nil {
		return nil, fmt.Errorf("migrate stored_tokens: %w", err)
	}
	return &SQLBackend{client: client, profile: profile}, nil
}

func (s *SQLBackend) Get(ctx context.Context, keys ...string) (string, bool, error) {
	if len(keys) == 0 {
		return "", false, nil
	}
	var rows []models.StoredToken
	err := s.client.DB().WithContext(ctx).
		Where("profile = ? AND token_key IN ?", s.profile, keys).
		Find(&rows).Error
	if err != nil {
		return "", false, err
	}
	byKey := make(map[string]string, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}
	for _, k := range keys {
		if v := byKey[k]; v != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}

func (s *SQLBackend) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.StoredToken, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.StoredToken{Profile: s.profile, Key: k, Value: v})
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}, {Name: "token_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

func (s *SQLBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.DB().WithContext(ctx).
		Where("profile = ? AND token_key IN ?", s.profile, keys).
		Delete(&models.StoredToken{}).Error
}
