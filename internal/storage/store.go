package storage

import (
	"errors"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateIntent is returned when an active payment intent already
	// exists for the same user and vehicle inside the guard window.
	ErrDuplicateIntent = errors.New("active payment intent already exists")
	// ErrStaleState is returned when a conditional transition matched no
	// row, i.e. the intent was not in the expected state.
	ErrStaleState = errors.New("intent not in expected state")
)

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	// Vehicle operations
	CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error)
	GetVehicle(vehicleID string) (*models.Vehicle, error)
	GetVehiclesByOwner(ownerID string) ([]*models.Vehicle, error)
	GetPendingVehicles() ([]*models.Vehicle, error)
	UpdateVehicleStatus(vehicleID, status, adminNotes, verifiedBy string) error
	GetVehiclesExpiringWithin(days int) ([]*models.Vehicle, error)

	// Assessment operations
	CreateAssessment(a *models.TaxAssessment) (*models.TaxAssessment, error)
	GetAssessment(assessmentID string) (*models.TaxAssessment, error)

	// Intent operations. State transitions are conditional writes: each
	// one matches the expected current state and reports ErrStaleState
	// (ErrDuplicateIntent for creation) when nothing matched, so
	// interleaved requests cannot double-apply a transition.
	CreateIntentIfNoneActive(intent *models.PaymentIntent, window time.Duration) (*models.PaymentIntent, error)
	GetIntent(intentID string) (*models.PaymentIntent, error)
	GetIntentByReference(reference string) (*models.PaymentIntent, error)
	ConfirmIntent(intentID string) error
	AttachIntentReference(intentID, reference string) error
	FailIntent(intentID string) error

	// MarkIntentPaidAndExtend marks the intent for reference as paid with
	// the gateway transaction id and extends the vehicle's tax expiry in
	// one conditional commit. Returns the intent and true when the commit
	// was applied by this call, or the already-paid intent and false when
	// an earlier call won.
	MarkIntentPaidAndExtend(reference, transactionID string, payDate, newExpireDate time.Time) (*models.PaymentIntent, bool, error)

	// Cleanup
	DeleteExpiredIntents(olderThan time.Duration) (int64, error)
}
