package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

func seedUser(t *testing.T, store storage.Store) *models.User {
	t.Helper()
	user, err := store.CreateUser(&models.User{
		UserID: "user-1",
		Name:   "Ram Sharma",
		Email:  "ram@example.com",
	})
	require.NoError(t, err)
	return user
}

func seedVehicle(t *testing.T, store storage.Store, status string, expire time.Time) *models.Vehicle {
	t.Helper()
	vehicle, err := store.CreateVehicle(&models.Vehicle{
		OwnerID:          "user-1",
		Category:         models.CategoryFuel,
		VehicleType:      models.VehicleTypeMotorcycle,
		RegistrationNo:   "BA 2 PA 1234",
		Capacity:         150,
		RegistrationDate: time.Now().AddDate(-5, 0, 0),
		TaxExpireDate:    expire,
		Status:           status,
	})
	require.NoError(t, err)
	return vehicle
}

func TestRequestPaymentRequiresVerifiedVehicle(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedUser(t, store)
	vehicle := seedVehicle(t, store, models.StatusPending, time.Now().Add(10*24*time.Hour))

	workflow := NewPaymentWorkflow(store, gateway.NewDemoGateway(), NoopNotifier{})
	_, err := workflow.RequestPayment(context.Background(), user, vehicle.VehicleID, "khalti")
	assert.ErrorIs(t, err, ErrTargetNotVerified)
}

func TestRequestPaymentNotDue(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedUser(t, store)
	vehicle := seedVehicle(t, store, models.StatusVerified, time.Now().Add(60*24*time.Hour))

	workflow := NewPaymentWorkflow(store, gateway.NewDemoGateway(), NoopNotifier{})
	_, err := workflow.RequestPayment(context.Background(), user, vehicle.VehicleID, "khalti")
	assert.ErrorIs(t, err, ErrNotDue)
}

func TestPaymentLifecycleEndToEnd(t *testing.T) {
	store := storage.NewMemoryStore()
	gw := gateway.NewDemoGateway()
	user := seedUser(t, store)
	vehicle := seedVehicle(t, store, models.StatusVerified, time.Now().Add(10*24*time.Hour))

	workflow := NewPaymentWorkflow(store, gw, NoopNotifier{})
	ctx := context.Background()

	// Request: breakdown frozen into an assessment, OTP issued.
	result, err := workflow.RequestPayment(ctx, user, vehicle.VehicleID, "khalti")
	require.NoError(t, err)
	assert.Equal(t, 5300.0, result.Breakdown.Total)
	assert.Equal(t, 5300.0, result.Intent.Amount)
	require.Len(t, result.Intent.OTP, 6)

	// Confirm: OTP accepted, gateway initiated, reference attached.
	redirect, err := workflow.ConfirmPayment(ctx, result.Intent.IntentID, result.Intent.OTP)
	require.NoError(t, err)
	assert.NotEmpty(t, redirect.Reference)
	assert.Contains(t, redirect.PaymentURL, redirect.Reference)

	stored, err := store.GetIntent(result.Intent.IntentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusConfirmed, stored.PaymentStatus)
	assert.Equal(t, redirect.Reference, stored.GatewayReference)

	// External completion, then reconciliation.
	require.NoError(t, gw.Complete(redirect.Reference))

	verification, err := workflow.CompleteAndVerify(ctx, redirect.Reference, vehicle.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, 5300.0, verification.TotalAmount)
	assert.NotEmpty(t, verification.TransactionID)

	renewed, err := store.GetVehicle(vehicle.VehicleID)
	require.NoError(t, err)
	require.NotNil(t, renewed.TaxPayDate)
	assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), renewed.TaxExpireDate, time.Minute)
}

type unavailableGateway struct{}

func (unavailableGateway) Initiate(context.Context, *gateway.InitiateRequest) (*gateway.InitiateResponse, error) {
	return nil, gateway.ErrUnavailable
}

func (unavailableGateway) Lookup(context.Context, string) (*gateway.LookupResult, error) {
	return nil, gateway.ErrUnavailable
}

func TestConfirmPaymentGatewayUnavailable(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedUser(t, store)
	vehicle := seedVehicle(t, store, models.StatusVerified, time.Now().Add(10*24*time.Hour))

	workflow := NewPaymentWorkflow(store, unavailableGateway{}, NoopNotifier{})
	ctx := context.Background()

	result, err := workflow.RequestPayment(ctx, user, vehicle.VehicleID, "khalti")
	require.NoError(t, err)

	_, err = workflow.ConfirmPayment(ctx, result.Intent.IntentID, result.Intent.OTP)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)

	// No reference was attached and nothing was committed; the user
	// starts a fresh intent once the guard window lapses.
	stored, err := store.GetIntent(result.Intent.IntentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusConfirmed, stored.PaymentStatus)
	assert.Empty(t, stored.GatewayReference)
}
