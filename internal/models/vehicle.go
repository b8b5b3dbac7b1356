package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Category distinguishes fuel and electric vehicle records. The tax tiers
// are keyed by category, so the value is stored, never inferred.
type Category string

const (
	CategoryFuel     Category = "fuel"
	CategoryElectric Category = "electric"
)

// VehicleType drives the renewal charge and the base-tax tier table.
type VehicleType string

const (
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeCar        VehicleType = "car"
)

// ParseVehicleType normalizes free-form input to a known vehicle type.
// Unknown values fall back to the motorcycle tier; that mirrors the
// historical behavior and is kept as documented policy.
func ParseVehicleType(s string) VehicleType {
	switch s {
	case "car", "Car", "CAR":
		return VehicleTypeCar
	case "motorcycle", "Motorcycle", "bike", "Bike":
		return VehicleTypeMotorcycle
	default:
		return VehicleTypeMotorcycle
	}
}

// Verification status constants for a vehicle record
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Vehicle is a bluebook renewal record. Covers both fuel and electric
// vehicles; Capacity holds engine CC for fuel and battery kWh for electric.
// TaxPayDate/TaxExpireDate are written only by payment reconciliation,
// Status only by admin verification.
type Vehicle struct {
	gorm.Model
	VehicleID        string      `json:"vehicle_id" gorm:"uniqueIndex"`
	OwnerID          string      `json:"owner_id" gorm:"index;not null"`
	OwnerName        string      `json:"owner_name"`
	Category         Category    `json:"category" gorm:"not null;index"`
	VehicleType      VehicleType `json:"vehicle_type" gorm:"not null"`
	RegistrationNo   string      `json:"registration_no" gorm:"index"`
	VehicleModel     string      `json:"vehicle_model"`
	ManufactureYear  int         `json:"manufacture_year"`
	ChassisNumber    string      `json:"chassis_number"`
	Capacity         float64     `json:"capacity"` // engine CC or battery kWh
	RegistrationDate time.Time   `json:"registration_date"`
	TaxPayDate       *time.Time  `json:"tax_pay_date"`
	TaxExpireDate    time.Time   `json:"tax_expire_date"`
	Status           string      `json:"status" gorm:"default:pending"` // pending, verified, rejected
	AdminNotes       string      `json:"admin_notes"`
	VerifiedBy       string      `json:"verified_by"`
	VerifiedAt       *time.Time  `json:"verified_at"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.VehicleID == "" {
		v.VehicleID = fmt.Sprintf("VEH%d", time.Now().UnixNano())
	}
	return nil
}

// VehicleRegistration is the owner-submitted registration payload
type VehicleRegistration struct {
	OwnerName        string  `json:"owner_name"`
	Category         string  `json:"category"`
	VehicleType      string  `json:"vehicle_type"`
	RegistrationNo   string  `json:"registration_no"`
	VehicleModel     string  `json:"vehicle_model"`
	ManufactureYear  int     `json:"manufacture_year"`
	ChassisNumber    string  `json:"chassis_number"`
	Capacity         float64 `json:"capacity"`
	RegistrationDate string  `json:"registration_date"` // YYYY-MM-DD
	TaxExpireDate    string  `json:"tax_expire_date"`   // YYYY-MM-DD
}
