package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	domainerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

// Repository persists API key credentials in PostgreSQL via GORM.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) FindActiveByKey(ctx context.Context, key string) (entities.APIKey, bool, error) {
	var row apiKeyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		Where("is_active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.APIKey{}, false, nil
		}
		return entities.APIKey{}, false, r.logError("apikey_repo_find_by_key_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) FindByOwner(ctx context.Context, owner string) (entities.APIKey, bool, error) {
	var row apiKeyModel
	err := r.db.WithContext(ctx).
		Where("owner = ?", strings.TrimSpace(owner)).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.APIKey{}, false, nil
		}
		return entities.APIKey{}, false, r.logError("apikey_repo_find_by_owner_failed", err,
			"owner", strings.TrimSpace(owner),
		)
	}
	return row.toEntity(), true, nil
}

// ReplaceForOwner deletes the owner's existing rows and inserts the new
// credential in one transaction, so a crash between the two statements
// never leaves the owner with zero or two live keys.
func (r *Repository) ReplaceForOwner(ctx context.Context, key entities.APIKey) error {
	row := apiKeyModelFromEntity(key)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("owner = ?", row.Owner).
			Delete(&apiKeyModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrKeyConflict
		}
		return r.logError("apikey_repo_replace_for_owner_failed", err, "owner", row.Owner)
	}
	return nil
}

func (r *Repository) TouchLastUsed(ctx context.Context, key string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&apiKeyModel{}).
		Where("key = ?", strings.TrimSpace(key)).
		Update("last_used", now.UTC())
	if result.Error != nil {
		return r.logError("apikey_repo_touch_last_used_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrKeyNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/apikey-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("apikey repository operation failed", fields...)
	return err
}

type apiKeyModel struct {
	Key       string     `gorm:"column:key;primaryKey"`
	Owner     string     `gorm:"column:owner;index"`
	RateLimit int        `gorm:"column:rate_limit"`
	IsActive  bool       `gorm:"column:is_active"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	LastUsed  *time.Time `gorm:"column:last_used"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

func apiKeyModelFromEntity(key entities.APIKey) apiKeyModel {
	row := apiKeyModel{
		Key:       strings.TrimSpace(key.Key),
		Owner:     strings.TrimSpace(key.Owner),
		RateLimit: key.RateLimit,
		IsActive:  key.IsActive,
		CreatedAt: key.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if key.LastUsed != nil {
		lastUsed := key.LastUsed.UTC()
		row.LastUsed = &lastUsed
	}
	return row
}

func (m apiKeyModel) toEntity() entities.APIKey {
	item := entities.APIKey{
		Key:       m.Key,
		Owner:     m.Owner,
		RateLimit: m.RateLimit,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.LastUsed != nil {
		lastUsed := m.LastUsed.UTC()
		item.LastUsed = &lastUsed
	}
	return item
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.CredentialRepository = (*Repository)(nil)
