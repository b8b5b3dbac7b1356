package services

import (
	"math"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
)

// TaxBreakdown is the result of one tax computation. Amounts are rupees.
type TaxBreakdown struct {
	BaseTax       float64 `json:"base_tax"`
	RenewalCharge float64 `json:"renewal_charge"`
	FineAmount    float64 `json:"fine_amount"`
	AgeSurcharge  float64 `json:"age_surcharge"`
	Total         float64 `json:"total"`
	DaysLeft      int     `json:"days_left"`
}

// taxTier maps a capacity band (engine CC or battery kWh, inclusive upper
// bound) to its base tax.
type taxTier struct {
	upTo float64
	tax  float64
}

// Base-tax tier tables, keyed by category and vehicle type. An unknown
// vehicle type is normalized to motorcycle before lookup (documented
// policy, see ParseVehicleType).
var taxTiers = map[models.Category]map[models.VehicleType][]taxTier{
	models.CategoryFuel: {
		models.VehicleTypeMotorcycle: {
			{125, 3000}, {150, 5000}, {225, 6500}, {400, 12000}, {650, 25000},
		},
		models.VehicleTypeCar: {
			{1000, 22000}, {1500, 25000}, {2000, 27000}, {2500, 37000}, {3000, 50000}, {3500, 65000},
		},
	},
	models.CategoryElectric: {
		models.VehicleTypeMotorcycle: {
			{50, 1000}, {350, 1500}, {1000, 2000}, {1500, 2500},
		},
		models.VehicleTypeCar: {
			{10, 5000}, {50, 5000}, {125, 15000}, {200, 20000},
		},
	},
}

// Base tax above the highest band. The fuel motorcycle value of 3600 is
// the historical rate and is kept as is.
var taxFallback = map[models.Category]map[models.VehicleType]float64{
	models.CategoryFuel: {
		models.VehicleTypeMotorcycle: 3600,
		models.VehicleTypeCar:        70000,
	},
	models.CategoryElectric: {
		models.VehicleTypeMotorcycle: 3000,
		models.VehicleTypeCar:        30000,
	},
}

var renewalCharges = map[models.VehicleType]float64{
	models.VehicleTypeMotorcycle: 300,
	models.VehicleTypeCar:        500,
}

// BaseTax resolves the tiered base tax for a vehicle
func BaseTax(category models.Category, vehicleType models.VehicleType, capacity float64) float64 {
	tiers, ok := taxTiers[category][vehicleType]
	if !ok {
		tiers = taxTiers[category][models.VehicleTypeMotorcycle]
		vehicleType = models.VehicleTypeMotorcycle
	}
	for _, tier := range tiers {
		if capacity <= tier.upTo {
			return tier.tax
		}
	}
	return taxFallback[category][vehicleType]
}

// ComputeTax calculates the full tax breakdown for a vehicle. Pure: no
// I/O, the clock is a parameter.
//
// daysLeft = ceil((taxExpireDate - now) / 1 day). More than 30 days out is
// not payable yet (ErrNotDue). Overdue renewals pay a fine on the base tax
// (5% within 45 days, 10% within a year, 20% beyond). Vehicles 15 or more
// registration years old pay a 10% surcharge on the subtotal.
func ComputeTax(category models.Category, vehicleType models.VehicleType, capacity float64,
	taxExpireDate, registrationDate, now time.Time) (*TaxBreakdown, error) {

	daysLeft := int(math.Ceil(taxExpireDate.Sub(now).Hours() / 24))
	if daysLeft > 30 {
		return nil, ErrNotDue
	}

	baseTax := BaseTax(category, vehicleType, capacity)
	renewalCharge, ok := renewalCharges[vehicleType]
	if !ok {
		renewalCharge = renewalCharges[models.VehicleTypeMotorcycle]
	}

	var fineAmount float64
	if daysLeft <= 1 {
		switch {
		case daysLeft <= -365:
			fineAmount = 0.2 * baseTax
		case daysLeft <= -45:
			fineAmount = 0.1 * baseTax
		case daysLeft <= -1:
			fineAmount = 0.05 * baseTax
		}
	}

	subtotal := baseTax + renewalCharge + fineAmount

	var ageSurcharge float64
	if now.Year()-registrationDate.Year() >= 15 {
		ageSurcharge = 0.1 * subtotal
	}

	return &TaxBreakdown{
		BaseTax:       baseTax,
		RenewalCharge: renewalCharge,
		FineAmount:    fineAmount,
		AgeSurcharge:  ageSurcharge,
		Total:         subtotal + ageSurcharge,
		DaysLeft:      daysLeft,
	}, nil
}
