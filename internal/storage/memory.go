package storage

import (
	"strings"
	"sync"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore holds all data in memory, for tests and offline demo runs
type MemoryStore struct {
	users       map[string]*models.User
	vehicles    map[string]*models.Vehicle
	assessments map[string]*models.TaxAssessment
	intents     map[string]*models.PaymentIntent

	// Mutexes for thread safety. intentMu also serializes the
	// check-then-create guard and the paid commit; when both intent and
	// vehicle locks are needed, intentMu is taken first.
	userMu    sync.RWMutex
	vehicleMu sync.RWMutex
	assessMu  sync.RWMutex
	intentMu  sync.Mutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		vehicles:    make(map[string]*models.Vehicle),
		assessments: make(map[string]*models.TaxAssessment),
		intents:     make(map[string]*models.PaymentIntent),
	}
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(userID string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

// Vehicle operations

func (m *MemoryStore) CreateVehicle(vehicle *models.Vehicle) (*models.Vehicle, error) {
	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	if vehicle.VehicleID == "" {
		vehicle.VehicleID = "VEH" + uuid.NewString()
	}
	if vehicle.Status == "" {
		vehicle.Status = models.StatusPending
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	m.vehicles[vehicle.VehicleID] = vehicle
	return vehicle, nil
}

func (m *MemoryStore) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	return m.getVehicleLocked(vehicleID)
}

func (m *MemoryStore) getVehicleLocked(vehicleID string) (*models.Vehicle, error) {
	vehicle, exists := m.vehicles[vehicleID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (m *MemoryStore) GetVehiclesByOwner(ownerID string) ([]*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	var vehicles []*models.Vehicle
	for _, v := range m.vehicles {
		if v.OwnerID == ownerID {
			copied := *v
			vehicles = append(vehicles, &copied)
		}
	}
	return vehicles, nil
}

func (m *MemoryStore) GetPendingVehicles() ([]*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	var vehicles []*models.Vehicle
	for _, v := range m.vehicles {
		if v.Status == models.StatusPending {
			copied := *v
			vehicles = append(vehicles, &copied)
		}
	}
	return vehicles, nil
}

func (m *MemoryStore) UpdateVehicleStatus(vehicleID, status, adminNotes, verifiedBy string) error {
	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	vehicle, exists := m.vehicles[vehicleID]
	if !exists {
		return ErrNotFound
	}
	now := time.Now()
	vehicle.Status = status
	vehicle.AdminNotes = adminNotes
	vehicle.VerifiedBy = verifiedBy
	vehicle.VerifiedAt = &now
	vehicle.UpdatedAt = now
	return nil
}

func (m *MemoryStore) GetVehiclesExpiringWithin(days int) ([]*models.Vehicle, error) {
	m.vehicleMu.RLock()
	defer m.vehicleMu.RUnlock()

	cutoff := time.Now().AddDate(0, 0, days)
	var vehicles []*models.Vehicle
	for _, v := range m.vehicles {
		if v.Status == models.StatusVerified && v.TaxExpireDate.Before(cutoff) {
			copied := *v
			vehicles = append(vehicles, &copied)
		}
	}
	return vehicles, nil
}

// Assessment operations

func (m *MemoryStore) CreateAssessment(a *models.TaxAssessment) (*models.TaxAssessment, error) {
	m.assessMu.Lock()
	defer m.assessMu.Unlock()

	if a.AssessmentID == "" {
		a.AssessmentID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	m.assessments[a.AssessmentID] = a
	return a, nil
}

func (m *MemoryStore) GetAssessment(assessmentID string) (*models.TaxAssessment, error) {
	m.assessMu.RLock()
	defer m.assessMu.RUnlock()

	a, exists := m.assessments[assessmentID]
	if !exists {
		return nil, ErrNotFound
	}
	return a, nil
}

// Intent operations

func (m *MemoryStore) CreateIntentIfNoneActive(intent *models.PaymentIntent, window time.Duration) (*models.PaymentIntent, error) {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	guardStart := time.Now().Add(-window)
	for _, existing := range m.intents {
		if existing.UserID == intent.UserID &&
			existing.VehicleID == intent.VehicleID &&
			!existing.Terminal() &&
			existing.CreatedAt.After(guardStart) {
			return nil, ErrDuplicateIntent
		}
	}

	if intent.IntentID == "" {
		intent.IntentID = uuid.NewString()
	}
	if intent.PaymentStatus == "" {
		intent.PaymentStatus = models.PaymentStatusPending
	}
	intent.CreatedAt = time.Now()
	intent.UpdatedAt = intent.CreatedAt
	copied := *intent
	m.intents[intent.IntentID] = &copied
	return intent, nil
}

func (m *MemoryStore) GetIntent(intentID string) (*models.PaymentIntent, error) {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	return m.getIntentLocked(intentID)
}

func (m *MemoryStore) getIntentLocked(intentID string) (*models.PaymentIntent, error) {
	intent, exists := m.intents[intentID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *intent
	return &copied, nil
}

func (m *MemoryStore) GetIntentByReference(reference string) (*models.PaymentIntent, error) {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	for _, intent := range m.intents {
		if intent.GatewayReference == reference {
			copied := *intent
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ConfirmIntent(intentID string) error {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	intent, exists := m.intents[intentID]
	if !exists {
		return ErrNotFound
	}
	if intent.PaymentStatus != models.PaymentStatusPending {
		return ErrStaleState
	}
	intent.PaymentStatus = models.PaymentStatusConfirmed
	intent.OTP = ""
	intent.OTPExpiresAt = nil
	intent.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) AttachIntentReference(intentID, reference string) error {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	intent, exists := m.intents[intentID]
	if !exists {
		return ErrNotFound
	}
	if intent.PaymentStatus != models.PaymentStatusConfirmed || intent.GatewayReference != "" {
		return ErrStaleState
	}
	intent.GatewayReference = reference
	intent.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) FailIntent(intentID string) error {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	intent, exists := m.intents[intentID]
	if !exists {
		return ErrNotFound
	}
	if intent.PaymentStatus == models.PaymentStatusPaid {
		return ErrStaleState
	}
	intent.PaymentStatus = models.PaymentStatusFailed
	intent.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) MarkIntentPaidAndExtend(reference, transactionID string, payDate, newExpireDate time.Time) (*models.PaymentIntent, bool, error) {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	var intent *models.PaymentIntent
	for _, candidate := range m.intents {
		if candidate.GatewayReference == reference {
			intent = candidate
			break
		}
	}
	if intent == nil {
		return nil, false, ErrNotFound
	}

	// Already committed by an earlier verification: return the cached
	// result, do not touch the vehicle again.
	if intent.PaymentStatus == models.PaymentStatusPaid {
		copied := *intent
		return &copied, false, nil
	}

	m.vehicleMu.Lock()
	defer m.vehicleMu.Unlock()

	vehicle, exists := m.vehicles[intent.VehicleID]
	if !exists {
		return nil, false, ErrNotFound
	}

	intent.PaymentStatus = models.PaymentStatusPaid
	intent.TransactionID = transactionID
	intent.PaidAt = &payDate
	intent.UpdatedAt = time.Now()

	vehicle.TaxPayDate = &payDate
	vehicle.TaxExpireDate = newExpireDate
	vehicle.UpdatedAt = time.Now()

	copied := *intent
	return &copied, true, nil
}

func (m *MemoryStore) DeleteExpiredIntents(olderThan time.Duration) (int64, error) {
	m.intentMu.Lock()
	defer m.intentMu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var removed int64
	for id, intent := range m.intents {
		if intent.PaymentStatus == models.PaymentStatusPending && intent.CreatedAt.Before(cutoff) {
			delete(m.intents, id)
			removed++
		}
	}
	return removed, nil
}
