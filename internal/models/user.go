package models

import "gorm.io/gorm"

// User is the minimal identity record the payment flow needs: where to send
// the OTP and whether the account may run admin verification.
type User struct {
	gorm.Model
	UserID  string `json:"user_id" gorm:"uniqueIndex"`
	Name    string `json:"name"`
	Email   string `json:"email" gorm:"index"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin" gorm:"default:false"`
}
