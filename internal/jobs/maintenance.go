// Package jobs runs the background maintenance loops: pruning stale
// payment intents and reminding owners of upcoming tax expiry.
package jobs

import (
	"log"
	"time"

	"github.com/bluebook-nepal/bluebook-backend/internal/services"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// Intents that never got their OTP confirmed are kept for an hour for
// debugging, then pruned.
const staleIntentAge = time.Hour

// MaintenanceJob handles scheduled maintenance tasks
type MaintenanceJob struct {
	store     storage.Store
	notifier  services.Notifier
	isRunning bool
}

// NewMaintenanceJob creates a new maintenance job scheduler
func NewMaintenanceJob(store storage.Store, notifier services.Notifier) *MaintenanceJob {
	return &MaintenanceJob{
		store:     store,
		notifier:  notifier,
		isRunning: false,
	}
}

// Start begins all scheduled maintenance jobs
func (j *MaintenanceJob) Start() {
	if j.isRunning {
		log.Println("Maintenance jobs already running")
		return
	}

	j.isRunning = true
	log.Println("Starting scheduled maintenance jobs...")

	go j.scheduleIntentCleanup()
	go j.scheduleTaxReminders()
}

// Stop halts all scheduled jobs
func (j *MaintenanceJob) Stop() {
	j.isRunning = false
	log.Println("Stopping scheduled maintenance jobs...")
}

// STALE INTENT CLEANUP - Runs every 10 minutes
func (j *MaintenanceJob) scheduleIntentCleanup() {
	for j.isRunning {
		time.Sleep(10 * time.Minute)
		if !j.isRunning {
			break
		}

		removed, err := j.store.DeleteExpiredIntents(staleIntentAge)
		if err != nil {
			log.Printf("Error cleaning up expired payment intents: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("🧹 Removed %d expired payment intents", removed)
		}
	}
}

// TAX DUE REMINDERS - Runs every day at 10 AM
func (j *MaintenanceJob) scheduleTaxReminders() {
	for j.isRunning {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		duration := next.Sub(now)
		log.Printf("Next tax reminder run in %v", duration)
		time.Sleep(duration)

		if !j.isRunning {
			break
		}
		j.sendTaxReminders()
	}
}

// sendTaxReminders notifies owners whose tax expires within 30 days
func (j *MaintenanceJob) sendTaxReminders() {
	vehicles, err := j.store.GetVehiclesExpiringWithin(30)
	if err != nil {
		log.Printf("Failed to get expiring vehicles: %v", err)
		return
	}

	remindersSent := 0
	for _, vehicle := range vehicles {
		owner, err := j.store.GetUser(vehicle.OwnerID)
		if err != nil {
			log.Printf("Failed to get owner %s: %v", vehicle.OwnerID, err)
			continue
		}

		if err := j.notifier.SendTaxReminder(owner, vehicle); err != nil {
			log.Printf("Failed to send tax reminder to %s: %v", owner.Email, err)
			continue
		}
		remindersSent++
	}

	log.Printf("Sent %d tax reminders", remindersSent)
}
