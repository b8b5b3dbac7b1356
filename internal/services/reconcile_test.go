package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// seedPaidFlow sets up a verified vehicle with a confirmed intent that has
// a gateway reference attached, i.e. the state right before reconciliation.
func seedPaidFlow(t *testing.T, store storage.Store, gw *gateway.DemoGateway) (vehicleID, pidx string) {
	t.Helper()

	vehicle, err := store.CreateVehicle(&models.Vehicle{
		OwnerID:          "user-1",
		Category:         models.CategoryFuel,
		VehicleType:      models.VehicleTypeMotorcycle,
		RegistrationNo:   "BA 2 PA 1234",
		Capacity:         150,
		RegistrationDate: time.Now().AddDate(-5, 0, 0),
		TaxExpireDate:    time.Now().Add(10 * 24 * time.Hour),
		Status:           models.StatusVerified,
	})
	require.NoError(t, err)

	svc := NewPaymentIntentService(store)
	intent, err := svc.CreateIntent("user-1", vehicle.VehicleID, "khalti", &models.TaxAssessment{
		AssessmentID: "assessment-1",
		VehicleID:    vehicle.VehicleID,
		TotalAmount:  5300,
	})
	require.NoError(t, err)

	_, err = svc.ConfirmOTP(intent.IntentID, intent.OTP)
	require.NoError(t, err)

	resp, err := gw.Initiate(context.Background(), &gateway.InitiateRequest{
		PurchaseOrderID: "assessment-1",
		Amount:          530000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.AttachGatewayReference(intent.IntentID, resp.Pidx))

	return vehicle.VehicleID, resp.Pidx
}

func TestVerifyRejectsIncompletePayment(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	vehicleID, pidx := seedPaidFlow(t, store, gw)

	svc := NewReconciliationService(store, gw)
	_, err := svc.Verify(context.Background(), pidx, vehicleID)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)

	// A failed reconciliation never mutates the vehicle.
	vehicle, err := store.GetVehicle(vehicleID)
	require.NoError(t, err)
	assert.Nil(t, vehicle.TaxPayDate)
}

func TestVerifyCommitsRenewalOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	vehicleID, pidx := seedPaidFlow(t, store, gw)
	require.NoError(t, gw.Complete(pidx))

	svc := NewReconciliationService(store, gw)

	first, err := svc.Verify(context.Background(), pidx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, 5300.0, first.TotalAmount)
	assert.NotEmpty(t, first.TransactionID)

	vehicle, err := store.GetVehicle(vehicleID)
	require.NoError(t, err)
	require.NotNil(t, vehicle.TaxPayDate)
	firstExpire := vehicle.TaxExpireDate
	assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), firstExpire, time.Minute)

	// Second verification returns the cached result and does not extend
	// the due date again.
	second, err := svc.Verify(context.Background(), pidx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	vehicle, err = store.GetVehicle(vehicleID)
	require.NoError(t, err)
	assert.Equal(t, firstExpire, vehicle.TaxExpireDate)
}

func TestVerifyConcurrentCallsSingleCommit(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	vehicleID, pidx := seedPaidFlow(t, store, gw)
	require.NoError(t, gw.Complete(pidx))

	svc := NewReconciliationService(store, gw)

	const callers = 6
	var wg sync.WaitGroup
	results := make([]*VerificationResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Verify(context.Background(), pidx, vehicleID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].TransactionID, results[i].TransactionID)
	}

	intent, err := store.GetIntentByReference(pidx)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, intent.PaymentStatus)
}

func TestVerifyUnknownReference(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	svc := NewReconciliationService(store, gw)

	_, err := svc.Verify(context.Background(), "PIDX-missing", "VEH1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Verify(context.Background(), "", "VEH1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerifyReferenceVehicleMismatch(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	_, pidx := seedPaidFlow(t, store, gw)
	require.NoError(t, gw.Complete(pidx))

	svc := NewReconciliationService(store, gw)
	_, err := svc.Verify(context.Background(), pidx, "VEH-other")
	assert.ErrorIs(t, err, ErrValidation)
}
