package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type ProfileRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewProfileRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ProfileRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProfileRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Get возвращает профиль субъекта; (nil, nil), если профиля нет
func (r *ProfileRepository) Get(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error) {
	p := &models.ProfileSnapshot{}
	query := `
		SELECT
			subject_id,
			first_name,
			last_name,
			dob,
			phone_number,
			ice_name,
			ice_phone,
			relationship,
			email,
			home_address
		FROM profiles
		WHERE subject_id = $1;
	`
	err := r.db.QueryRow(ctx, query, subjectID).Scan(
		&p.SubjectID,
		&p.FirstName,
		&p.LastName,
		&p.DOB,
		&p.Phone,
		&p.EmergencyContactName,
		&p.EmergencyContactPhone,
		&p.Relationship,
		&p.Email,
		&p.HomeAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Upsert создает или перезаписывает профиль
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.ProfileSnapshot) error {
	query := `
		INSERT INTO profiles (subject_id, first_name, last_name, dob, phone_number, ice_name, ice_phone, relationship, email, home_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (subject_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			dob = EXCLUDED.dob,
			phone_number = EXCLUDED.phone_number,
			ice_name = EXCLUDED.ice_name,
			ice_phone = EXCLUDED.ice_phone,
			relationship = EXCLUDED.relationship,
			email = EXCLUDED.email,
			home_address = EXCLUDED.home_address,
			updated_at = NOW();
	`
	_, err := r.db.Exec(ctx, query,
		p.SubjectID,
		p.FirstName,
		p.LastName,
		p.DOB,
		p.Phone,
		p.EmergencyContactName,
		p.EmergencyContactPhone,
		p.Relationship,
		p.Email,
		p.HomeAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// Delete удаляет профиль субъекта. false - профиля не было.
func (r *ProfileRepository) Delete(ctx context.Context, subjectID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE subject_id = $1;`, subjectID)
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func profileKey(subjectID string) string {
	return fmt.Sprintf("profile:%s", subjectID)
}

// GetFromCache пытается получить профиль из Redis
func (r *ProfileRepository) GetFromCache(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error) {
	val, err := r.redisClient.Get(ctx, profileKey(subjectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile from cache: %w", err)
	}

	p := &models.ProfileSnapshot{}
	if err := json.Unmarshal(val, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile from cache: %w", err)
	}
	return p, nil
}

// SetCache сохраняет профиль в Redis
func (r *ProfileRepository) SetCache(ctx context.Context, p *models.ProfileSnapshot) error {
	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, profileKey(p.SubjectID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set profile in cache: %w", err)
	}
	return nil
}

// InvalidateCache удаляет профиль из Redis кэша
func (r *ProfileRepository) InvalidateCache(ctx context.Context, subjectID string) error {
	if err := r.redisClient.Del(ctx, profileKey(subjectID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile cache: %w", err)
	}
	return nil
}
