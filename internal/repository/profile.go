// Package repository implements PostgreSQL persistence for profiles,
// reports, and chat history.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/healthmate-ai/backend/internal/security"
	"github.com/healthmate-ai/backend/pkg/model"
)

// ProfileRepository manages health profile records
type ProfileRepository struct {
	db        *pgxpool.Pool
	encryptor *security.Encryptor
	logger    *zap.Logger
}

// NewProfileRepository creates a new ProfileRepository. The encryptor is
// optional; when nil, medical history free text is stored in clear.
func NewProfileRepository(db *pgxpool.Pool, encryptor *security.Encryptor, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:        db,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Upsert inserts or updates the profile keyed by auth_id. The returned
// profile carries the stored ID and timestamps.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.HealthProfile) (*model.HealthProfile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	stored := *profile
	if err := r.encryptHistoryFields(&stored); err != nil {
		return nil, fmt.Errorf("failed to encrypt profile fields: %w", err)
	}

	query := `
		INSERT INTO health_profiles (
			id, auth_id, full_name, age, gender, blood_group,
			height_cm, weight_kg, bmi,
			chronic_diseases, allergies, current_medications, past_surgeries, family_history,
			blood_pressure_systolic, blood_pressure_diastolic, heart_rate,
			blood_sugar, cholesterol, oxygen_level,
			primary_goal, target_weight, activity_level, dietary_preferences, sleep_hours,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, NOW(), NOW()
		)
		ON CONFLICT (auth_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			blood_group = EXCLUDED.blood_group,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			bmi = EXCLUDED.bmi,
			chronic_diseases = EXCLUDED.chronic_diseases,
			allergies = EXCLUDED.allergies,
			current_medications = EXCLUDED.current_medications,
			past_surgeries = EXCLUDED.past_surgeries,
			family_history = EXCLUDED.family_history,
			blood_pressure_systolic = EXCLUDED.blood_pressure_systolic,
			blood_pressure_diastolic = EXCLUDED.blood_pressure_diastolic,
			heart_rate = EXCLUDED.heart_rate,
			blood_sugar = EXCLUDED.blood_sugar,
			cholesterol = EXCLUDED.cholesterol,
			oxygen_level = EXCLUDED.oxygen_level,
			primary_goal = EXCLUDED.primary_goal,
			target_weight = EXCLUDED.target_weight,
			activity_level = EXCLUDED.activity_level,
			dietary_preferences = EXCLUDED.dietary_preferences,
			sleep_hours = EXCLUDED.sleep_hours,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.AuthID,
		stored.FullName,
		stored.Age,
		stored.Gender,
		stored.BloodGroup,
		stored.HeightCm,
		stored.WeightKg,
		stored.BMI,
		stored.ChronicDiseases,
		stored.Allergies,
		stored.CurrentMedications,
		stored.PastSurgeries,
		stored.FamilyHistory,
		stored.BloodPressureSystolic,
		stored.BloodPressureDiastolic,
		stored.HeartRate,
		stored.BloodSugar,
		stored.Cholesterol,
		stored.OxygenLevel,
		stored.PrimaryGoal,
		stored.TargetWeight,
		stored.ActivityLevel,
		stored.DietaryPreferences,
		stored.SleepHours,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to upsert health profile",
			zap.Error(err),
			zap.String("auth_id", profile.AuthID),
		)
		return nil, fmt.Errorf("failed to upsert health profile: %w", err)
	}

	return profile, nil
}

// GetByAuthID retrieves a profile by the auth provider identity. Returns
// (nil, nil) when no profile exists, so callers can distinguish absence
// from failure.
func (r *ProfileRepository) GetByAuthID(ctx context.Context, authID string) (*model.HealthProfile, error) {
	query := `
		SELECT
			id, auth_id, full_name, age, gender, blood_group,
			height_cm, weight_kg, bmi,
			chronic_diseases, allergies, current_medications, past_surgeries, family_history,
			blood_pressure_systolic, blood_pressure_diastolic, heart_rate,
			blood_sugar, cholesterol, oxygen_level,
			primary_goal, target_weight, activity_level, dietary_preferences, sleep_hours,
			created_at, updated_at
		FROM health_profiles
		WHERE auth_id = $1
	`

	var profile model.HealthProfile
	err := r.db.QueryRow(ctx, query, authID).Scan(
		&profile.ID,
		&profile.AuthID,
		&profile.FullName,
		&profile.Age,
		&profile.Gender,
		&profile.BloodGroup,
		&profile.HeightCm,
		&profile.WeightKg,
		&profile.BMI,
		&profile.ChronicDiseases,
		&profile.Allergies,
		&profile.CurrentMedications,
		&profile.PastSurgeries,
		&profile.FamilyHistory,
		&profile.BloodPressureSystolic,
		&profile.BloodPressureDiastolic,
		&profile.HeartRate,
		&profile.BloodSugar,
		&profile.Cholesterol,
		&profile.OxygenLevel,
		&profile.PrimaryGoal,
		&profile.TargetWeight,
		&profile.ActivityLevel,
		&profile.DietaryPreferences,
		&profile.SleepHours,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get health profile", zap.Error(err), zap.String("auth_id", authID))
		return nil, fmt.Errorf("failed to get health profile: %w", err)
	}

	if err := r.decryptHistoryFields(&profile); err != nil {
		return nil, fmt.Errorf("failed to decrypt profile fields: %w", err)
	}

	return &profile, nil
}

// Delete removes a user's profile
func (r *ProfileRepository) Delete(ctx context.Context, authID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM health_profiles WHERE auth_id = $1`, authID)
	if err != nil {
		r.logger.Error("failed to delete health profile",
			zap.Error(err),
			zap.String("auth_id", authID),
		)
		return fmt.Errorf("failed to delete health profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("health profile not found for user %s", authID)
	}

	return nil
}

// encryptHistoryFields encrypts free-text medical history in place
func (r *ProfileRepository) encryptHistoryFields(profile *model.HealthProfile) error {
	if r.encryptor == nil {
		return nil
	}

	fields := []**string{
		&profile.ChronicDiseases,
		&profile.Allergies,
		&profile.CurrentMedications,
		&profile.PastSurgeries,
		&profile.FamilyHistory,
	}
	for _, field := range fields {
		encrypted, err := r.encryptor.EncryptField(*field)
		if err != nil {
			return err
		}
		*field = encrypted
	}
	return nil
}

// decryptHistoryFields decrypts free-text medical history in place
func (r *ProfileRepository) decryptHistoryFields(profile *model.HealthProfile) error {
	if r.encryptor == nil {
		return nil
	}

	fields := []**string{
		&profile.ChronicDiseases,
		&profile.Allergies,
		&profile.CurrentMedications,
		&profile.PastSurgeries,
		&profile.FamilyHistory,
	}
	for _, field := range fields {
		decrypted, err := r.encryptor.DecryptField(*field)
		if err != nil {
			return err
		}
		*field = decrypted
	}
	return nil
}
