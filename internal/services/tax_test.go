package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
)

func taxDate(now time.Time, daysLeft int) time.Time {
	return now.Add(time.Duration(daysLeft) * 24 * time.Hour)
}

func TestComputeTaxNotDueYet(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-5, 0, 0)

	for _, daysLeft := range []int{31, 45, 200, 365} {
		_, err := ComputeTax(models.CategoryFuel, models.VehicleTypeMotorcycle, 150,
			taxDate(now, daysLeft), reg, now)
		assert.ErrorIs(t, err, ErrNotDue, "daysLeft=%d", daysLeft)
	}
}

func TestComputeTaxFineTiers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-5, 0, 0)

	tests := []struct {
		name     string
		daysLeft int
		wantFine float64 // fraction of base tax
	}{
		{"due today", 1, 0},
		{"within guard", 10, 0},
		{"overdue 10 days", -10, 0.05},
		{"overdue 50 days", -50, 0.10},
		{"overdue 400 days", -400, 0.20},
		{"overdue exactly 45 days", -45, 0.10},
		{"overdue exactly 365 days", -365, 0.20},
		{"overdue 1 day", -1, 0.05},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			breakdown, err := ComputeTax(models.CategoryFuel, models.VehicleTypeCar, 1200,
				taxDate(now, tc.daysLeft), reg, now)
			require.NoError(t, err)

			assert.Equal(t, 25000.0, breakdown.BaseTax)
			assert.Equal(t, tc.wantFine*25000, breakdown.FineAmount)
			assert.Equal(t, tc.daysLeft, breakdown.DaysLeft)
		})
	}
}

func TestComputeTaxFuelMotorcycleScenario(t *testing.T) {
	// Fuel motorcycle, 150cc, 10 days left, 5 years old.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-5, 0, 0)

	breakdown, err := ComputeTax(models.CategoryFuel, models.VehicleTypeMotorcycle, 150,
		taxDate(now, 10), reg, now)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, breakdown.BaseTax)
	assert.Equal(t, 300.0, breakdown.RenewalCharge)
	assert.Equal(t, 0.0, breakdown.FineAmount)
	assert.Equal(t, 0.0, breakdown.AgeSurcharge)
	assert.Equal(t, 5300.0, breakdown.Total)
	assert.Equal(t, 10, breakdown.DaysLeft)
}

func TestComputeTaxElectricCarOverdueOldVehicle(t *testing.T) {
	// Electric car, 60 kWh, 50 days overdue, 20 years old.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-20, 0, 0)

	breakdown, err := ComputeTax(models.CategoryElectric, models.VehicleTypeCar, 60,
		taxDate(now, -50), reg, now)
	require.NoError(t, err)

	assert.Equal(t, 15000.0, breakdown.BaseTax)
	assert.Equal(t, 500.0, breakdown.RenewalCharge)
	assert.Equal(t, 1500.0, breakdown.FineAmount)
	assert.Equal(t, 1700.0, breakdown.AgeSurcharge)
	assert.Equal(t, 18700.0, breakdown.Total)
}

func TestComputeTaxAgeSurchargeAppliedOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-15, 0, 0)

	breakdown, err := ComputeTax(models.CategoryFuel, models.VehicleTypeMotorcycle, 125,
		taxDate(now, -10), reg, now)
	require.NoError(t, err)

	subtotal := breakdown.BaseTax + breakdown.RenewalCharge + breakdown.FineAmount
	assert.Equal(t, 0.1*subtotal, breakdown.AgeSurcharge)
	assert.Equal(t, subtotal+breakdown.AgeSurcharge, breakdown.Total)
}

func TestComputeTaxNoSurchargeUnderFifteenYears(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-14, 0, 0)

	breakdown, err := ComputeTax(models.CategoryFuel, models.VehicleTypeCar, 3000,
		taxDate(now, 5), reg, now)
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.AgeSurcharge)
}

func TestBaseTaxTiers(t *testing.T) {
	tests := []struct {
		category models.Category
		vtype    models.VehicleType
		capacity float64
		want     float64
	}{
		{models.CategoryFuel, models.VehicleTypeMotorcycle, 125, 3000},
		{models.CategoryFuel, models.VehicleTypeMotorcycle, 126, 5000},
		{models.CategoryFuel, models.VehicleTypeMotorcycle, 400, 12000},
		{models.CategoryFuel, models.VehicleTypeMotorcycle, 650, 25000},
		{models.CategoryFuel, models.VehicleTypeMotorcycle, 651, 3600}, // historical rate above 650cc
		{models.CategoryFuel, models.VehicleTypeCar, 1000, 22000},
		{models.CategoryFuel, models.VehicleTypeCar, 3500, 65000},
		{models.CategoryFuel, models.VehicleTypeCar, 3501, 70000},
		{models.CategoryElectric, models.VehicleTypeMotorcycle, 50, 1000},
		{models.CategoryElectric, models.VehicleTypeMotorcycle, 1501, 3000},
		{models.CategoryElectric, models.VehicleTypeCar, 10, 5000},
		{models.CategoryElectric, models.VehicleTypeCar, 50, 5000},
		{models.CategoryElectric, models.VehicleTypeCar, 125, 15000},
		{models.CategoryElectric, models.VehicleTypeCar, 201, 30000},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, BaseTax(tc.category, tc.vtype, tc.capacity),
			"%s %s %.0f", tc.category, tc.vtype, tc.capacity)
	}
}

func TestComputeTaxUnknownVehicleTypeUsesMotorcycleTier(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := now.AddDate(-2, 0, 0)

	breakdown, err := ComputeTax(models.CategoryFuel, models.VehicleType("tractor"), 150,
		taxDate(now, 10), reg, now)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, breakdown.BaseTax)
	assert.Equal(t, 300.0, breakdown.RenewalCharge)
}
