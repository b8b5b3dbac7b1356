package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"gorm.io/gorm"
)

// DatabaseStore persists everything in PostgreSQL via GORM. The duplicate
// intent guard relies on the partial unique index on
// (user_id, vehicle_id) WHERE payment_status IN ('pending','confirmed')
// created by database.Migrate, so two interleaved creates cannot both
// insert. The state transitions use conditional UPDATE ... WHERE predicates
// and check RowsAffected instead of reading first.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a PostgreSQL-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *DatabaseStore) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// Vehicle operations

func (s *DatabaseStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *DatabaseStore) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.Where("vehicle_id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &vehicle, nil
}

func (s *DatabaseStore) GetVehiclesByOwner(ownerID string) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *DatabaseStore) GetPendingVehicles() ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	if err := s.db.Where("status = ?", models.StatusPending).Order("created_at").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *DatabaseStore) UpdateVehicleStatus(vehicleID, status, adminNotes, verifiedBy string) error {
	res := s.db.Model(&models.Vehicle{}).
		Where("vehicle_id = ?", vehicleID).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_notes": adminNotes,
			"verified_by": verifiedBy,
			"verified_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) GetVehiclesExpiringWithin(days int) ([]*models.Vehicle, error) {
	cutoff := time.Now().AddDate(0, 0, days)
	var vehicles []*models.Vehicle
	err := s.db.
		Where("status = ? AND tax_expire_date < ?", models.StatusVerified, cutoff).
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Assessment operations

func (s *DatabaseStore) CreateAssessment(a *models.TaxAssessment) (*models.TaxAssessment, error) {
	if err := s.db.Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}
	return a, nil
}

func (s *DatabaseStore) GetAssessment(assessmentID string) (*models.TaxAssessment, error) {
	var a models.TaxAssessment
	if err := s.db.Where("assessment_id = ?", assessmentID).First(&a).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &a, nil
}

// Intent operations

func (s *DatabaseStore) CreateIntentIfNoneActive(intent *models.PaymentIntent, window time.Duration) (*models.PaymentIntent, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Intents that outlived the guard window no longer block a new
		// attempt; supersede them before inserting so the partial unique
		// index only rejects genuinely concurrent duplicates.
		cutoff := time.Now().Add(-window)
		if err := tx.Model(&models.PaymentIntent{}).
			Where("user_id = ? AND vehicle_id = ? AND payment_status IN ? AND created_at < ?",
				intent.UserID, intent.VehicleID,
				[]string{models.PaymentStatusPending, models.PaymentStatusConfirmed}, cutoff).
			Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			return err
		}
		return tx.Create(intent).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIntent
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent, nil
}

func (s *DatabaseStore) GetIntent(intentID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := s.db.Where("intent_id = ?", intentID).First(&intent).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &intent, nil
}

func (s *DatabaseStore) GetIntentByReference(reference string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := s.db.Where("gateway_reference = ?", reference).First(&intent).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &intent, nil
}

func (s *DatabaseStore) ConfirmIntent(intentID string) error {
	res := s.db.Model(&models.PaymentIntent{}).
		Where("intent_id = ? AND payment_status = ?", intentID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusConfirmed,
			"otp":            "",
			"otp_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (s *DatabaseStore) AttachIntentReference(intentID, reference string) error {
	res := s.db.Model(&models.PaymentIntent{}).
		Where("intent_id = ? AND payment_status = ? AND (gateway_reference = '' OR gateway_reference IS NULL)",
			intentID, models.PaymentStatusConfirmed).
		Update("gateway_reference", reference)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (s *DatabaseStore) FailIntent(intentID string) error {
	res := s.db.Model(&models.PaymentIntent{}).
		Where("intent_id = ? AND payment_status <> ?", intentID, models.PaymentStatusPaid).
		Update("payment_status", models.PaymentStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (s *DatabaseStore) MarkIntentPaidAndExtend(reference, transactionID string, payDate, newExpireDate time.Time) (*models.PaymentIntent, bool, error) {
	var intent models.PaymentIntent
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The paid check and the commit are one conditional UPDATE. Two
		// concurrent verifications race on RowsAffected; the loser reads
		// the winner's committed row and applies nothing.
		res := tx.Model(&models.PaymentIntent{}).
			Where("gateway_reference = ? AND payment_status <> ?", reference, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"transaction_id": transactionID,
				"paid_at":        payDate,
			})
		if res.Error != nil {
			return res.Error
		}
		applied = res.RowsAffected > 0

		if err := tx.Where("gateway_reference = ?", reference).First(&intent).Error; err != nil {
			return translateNotFound(err)
		}
		if !applied {
			return nil
		}

		return tx.Model(&models.Vehicle{}).
			Where("vehicle_id = ?", intent.VehicleID).
			Updates(map[string]interface{}{
				"tax_pay_date":    payDate,
				"tax_expire_date": newExpireDate,
			}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &intent, applied, nil
}

func (s *DatabaseStore) DeleteExpiredIntents(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.db.
		Where("payment_status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Delete(&models.PaymentIntent{})
	return res.RowsAffected, res.Error
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
