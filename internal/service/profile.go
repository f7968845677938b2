package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/audit"
	"github.com/healthmate-ai/backend/internal/metrics"
	"github.com/healthmate-ai/backend/pkg/model"
)

// ProfileStore persists health profiles
type ProfileStore interface {
	Upsert(ctx context.Context, profile *model.HealthProfile) (*model.HealthProfile, error)
	GetByAuthID(ctx context.Context, authID string) (*model.HealthProfile, error)
	Delete(ctx context.Context, authID string) error
}

// ProfileAuditor records profile mutations
type ProfileAuditor interface {
	LogUpdate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
	LogDelete(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
}

// HealthSummary combines a profile with its derived metric categories
type HealthSummary struct {
	Profile *model.HealthProfile  `json:"profile"`
	Metrics metrics.HealthMetrics `json:"metrics"`
}

// ProfileService manages health profiles and their derived metrics
type ProfileService struct {
	store   ProfileStore
	auditor ProfileAuditor
	logger  *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(store ProfileStore, auditor ProfileAuditor, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
}

// SaveProfile upserts the user's profile. BMI is always recomputed from
// height and weight; any BMI value in the input is discarded. A profile
// without usable height and weight stores no BMI.
func (s *ProfileService) SaveProfile(ctx context.Context, profile *model.HealthProfile) (*model.HealthProfile, error) {
	if profile == nil || profile.AuthID == "" {
		return nil, fmt.Errorf("profile with auth_id is required")
	}

	profile.BMI = nil
	if profile.HeightCm != nil && profile.WeightKg != nil {
		if bmi, ok := metrics.ComputeBMI(*profile.HeightCm, *profile.WeightKg); ok {
			profile.BMI = &bmi
		}
	}

	saved, err := s.store.Upsert(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("health profile saved",
		zap.String("auth_id", saved.AuthID),
		zap.String("profile_id", saved.ID),
	)

	if s.auditor != nil {
		if err := s.auditor.LogUpdate(ctx, saved.AuthID, audit.ResourceHealthProfile, saved.ID); err != nil {
			s.logger.Warn("failed to audit profile update", zap.Error(err))
		}
	}

	return saved, nil
}

// GetProfile returns the user's profile, or nil when none exists
func (s *ProfileService) GetProfile(ctx context.Context, authID string) (*model.HealthProfile, error) {
	return s.store.GetByAuthID(ctx, authID)
}

// DeleteProfile removes the user's profile and audits the deletion
func (s *ProfileService) DeleteProfile(ctx context.Context, authID string) error {
	profile, err := s.store.GetByAuthID(ctx, authID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("health profile not found for user %s", authID)
	}

	if err := s.store.Delete(ctx, authID); err != nil {
		return err
	}

	s.logger.Info("health profile deleted", zap.String("auth_id", authID))

	if s.auditor != nil {
		if err := s.auditor.LogDelete(ctx, authID, audit.ResourceHealthProfile, profile.ID); err != nil {
			s.logger.Warn("failed to audit profile deletion", zap.Error(err))
		}
	}

	return nil
}

// GetHealthSummary returns the profile together with category labels for
// every vital that has a value. Returns nil when no profile exists.
func (s *ProfileService) GetHealthSummary(ctx context.Context, authID string) (*HealthSummary, error) {
	profile, err := s.store.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	return &HealthSummary{
		Profile: profile,
		Metrics: metrics.Evaluate(profile),
	}, nil
}
