package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/sirupsen/logrus"
)

type profileService struct {
	repo   ProfileRepository
	logger *logrus.Logger
}

func NewProfileService(repo ProfileRepository, logger *logrus.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile возвращает профиль субъекта. Отсутствующий профиль - (nil, nil).
func (s *profileService) GetProfile(ctx context.Context, subjectID string) (*models.ProfileSnapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "profile",
		"method":     "GetProfile",
		"subject_id": subjectID,
	})

	cached, err := s.repo.GetFromCache(ctx, subjectID)
	if err != nil {
		log.WithError(err).Warn("Failed to get profile from cache")
	}
	if cached != nil {
		log.Debug("Profile fetched from cache")
		return cached, nil
	}

	profile, err := s.repo.Get(ctx, subjectID)
	if err != nil {
		log.WithError(err).Error("Failed to get profile in repository")
		return nil, fmt.Errorf("service: could not get profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	if err := s.repo.SetCache(ctx, profile); err != nil {
		log.WithError(err).Warn("Failed to set profile cache")
	}
	return profile, nil
}

// SaveProfile нормализует телефоны и дату рождения и сохраняет профиль.
// Незаполненные поля допускаются: полноту профиля проверяет отправка вызова.
func (s *profileService) SaveProfile(ctx context.Context, profile *models.ProfileSnapshot) (*models.ProfileSnapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "profile",
		"method":     "SaveProfile",
		"subject_id": profile.SubjectID,
	})
	log.Info("Attempting to save profile")

	p := *profile
	if strings.TrimSpace(p.SubjectID) == "" {
		return nil, &emergency.ValidationError{Fields: []string{"idNumber"}}
	}

	var invalid []string
	if p.Phone != "" {
		phone, err := emergency.NormalizePhone(p.Phone)
		if err != nil {
			invalid = append(invalid, "phoneNumber")
		}
		p.Phone = phone
	}
	if p.EmergencyContactPhone != "" {
		phone, err := emergency.NormalizePhone(p.EmergencyContactPhone)
		if err != nil {
			invalid = append(invalid, "ICEphone")
		}
		p.EmergencyContactPhone = phone
	}
	if p.DOB != "" {
		dob, err := emergency.FormatDOB(p.DOB)
		if err != nil {
			invalid = append(invalid, "dob")
		}
		p.DOB = dob
	}
	if len(invalid) > 0 {
		log.WithField("fields", invalid).Warn("Profile has invalid fields")
		return nil, &emergency.ValidationError{Fields: invalid, Reason: "invalid format"}
	}

	if err := s.repo.Upsert(ctx, &p); err != nil {
		log.WithError(err).Error("Failed to save profile in repository")
		return nil, fmt.Errorf("service: could not save profile: %w", err)
	}
	if err := s.repo.InvalidateCache(ctx, p.SubjectID); err != nil {
		log.WithError(err).Warn("Failed to invalidate profile cache")
	}

	log.Info("Profile saved successfully")
	return &p, nil
}

// DeleteProfile удаляет профиль и его копию в кэше
func (s *profileService) DeleteProfile(ctx context.Context, subjectID string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "profile",
		"method":     "DeleteProfile",
		"subject_id": subjectID,
	})
	log.Info("Attempting to delete profile")

	deleted, err := s.repo.Delete(ctx, subjectID)
	if err != nil {
		log.WithError(err).Error("Failed to delete profile in repository")
		return fmt.Errorf("service: could not delete profile: %w", err)
	}
	// кэш сбрасывается и при отсутствии строки в бд, чтобы не отдавать устаревшую копию
	if err := s.repo.InvalidateCache(ctx, subjectID); err != nil {
		log.WithError(err).Warn("Failed to invalidate profile cache")
	}
	if !deleted {
		return fmt.Errorf("service: %w: %s", ErrProfileNotFound, subjectID)
	}

	log.Info("Profile deleted successfully")
	return nil
}
