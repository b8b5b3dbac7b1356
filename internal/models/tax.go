package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxAssessment is an immutable snapshot of one accepted tax computation.
// Created once per payment request, never updated.
type TaxAssessment struct {
	gorm.Model
	AssessmentID  string      `json:"assessment_id" gorm:"uniqueIndex"`
	VehicleID     string      `json:"vehicle_id" gorm:"index"`
	Category      Category    `json:"category"`
	VehicleType   VehicleType `json:"vehicle_type"`
	Capacity      float64     `json:"capacity"`
	BaseTax       float64     `json:"base_tax"`
	RenewalCharge float64     `json:"renewal_charge"`
	FineAmount    float64     `json:"fine_amount"`
	AgeSurcharge  float64     `json:"age_surcharge"`
	TotalAmount   float64     `json:"total_amount"`
	DaysLeft      int         `json:"days_left"`
}

func (t *TaxAssessment) BeforeCreate(tx *gorm.DB) error {
	if t.AssessmentID == "" {
		t.AssessmentID = uuid.NewString()
	}
	return nil
}
