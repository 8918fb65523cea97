package database

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique constraint rejects a write.
	// The constraint, not a prior existence query, is the real defense
	// against concurrent duplicate signups.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidTransition is returned when a status change is not allowed
	// by the report transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ProfileUpdate is applied atomically by UpdateProfile.
type ProfileUpdate struct {
	// Fields maps column names to new values for the users table.
	Fields map[string]any
	// ReplaceContacts, when non-nil, wholesale replaces the user's
	// emergency contacts (delete-all then insert).
	ReplaceContacts []*EmergencyContact
	// UpsertAuthority, when non-nil, is upserted by user id.
	UpsertAuthority *Authority
}

// Database defines the persistence operations of the API server. Methods
// taking a notifs slice write those outbox rows in the same transaction as
// the primary write.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Users
	CreateUser(ctx context.Context, user *User, notifs ...*Notification) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// DeleteUser removes the user and its dependent contact and authority
	// rows in one transaction.
	DeleteUser(ctx context.Context, id uint) error
	// UpdateProfile applies a partial profile update atomically.
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate, notifs ...*Notification) error

	// Admins
	CreateAdmin(ctx context.Context, admin *Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
	GetAdminByID(ctx context.Context, id uint) (*Admin, error)
	UpdateAdmin(ctx context.Context, admin *Admin) error

	// Reports
	CreateReport(ctx context.Context, report *Report, notifs ...*Notification) error
	GetReportByID(ctx context.Context, id uint) (*Report, error)
	GetReportsByUser(ctx context.Context, userID uint) ([]*Report, error)
	ListReports(ctx context.Context) ([]*Report, error)
	// UpdateReportStatus enforces the transition table and returns
	// ErrInvalidTransition when the move is not allowed.
	UpdateReportStatus(ctx context.Context, id uint, status ReportStatus, notifs ...*Notification) error
	DeleteReport(ctx context.Context, id uint, notifs ...*Notification) error

	// Siren alerts
	CreateSirenAlert(ctx context.Context, alert *SirenAlert, notifs ...*Notification) error
	// ListSirenAlertsAfter returns alerts with ID greater than after, in
	// ascending ID order. after=0 returns everything.
	ListSirenAlertsAfter(ctx context.Context, after uint) ([]*SirenAlert, error)

	// Profile satellites
	ListEmergencyContacts(ctx context.Context, userID uint) ([]*EmergencyContact, error)
	GetAuthorityByUser(ctx context.Context, userID uint) (*Authority, error)

	// Outbox
	EnqueueNotifications(ctx context.Context, notifs []*Notification) error
	// ListPendingNotifications returns pending rows whose next-attempt
	// time, if any, has passed.
	ListPendingNotifications(ctx context.Context, limit int) ([]*Notification, error)
	MarkNotificationSent(ctx context.Context, id uint) error
	// MarkNotificationFailed records a failed attempt. Non-terminal rows
	// stay pending but are deferred until nextAttempt.
	MarkNotificationFailed(ctx context.Context, id uint, attempts int, lastError string, terminal bool, nextAttempt time.Time) error
}
