package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshield/campusshield/internal/common/config"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "campusshield.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db Database, username, email string) *User {
	t.Helper()
	user := &User{Username: username, Password: "hashed", CollegeEmail: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestCreateUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "studentone", "s1@college.edu")

	err := db.CreateUser(ctx, &User{Username: "studentone", Password: "x", CollegeEmail: "other@college.edu"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = db.CreateUser(ctx, &User{Username: "studenttwo", Password: "x", CollegeEmail: "s1@college.edu"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Only the first record exists.
	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetUserByUsername(context.Background(), "missinguser")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetUserByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserRemovesDependents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	keep := seedUser(t, db, "studentkeep", "keep@college.edu")
	gone := seedUser(t, db, "studentgone", "gone@college.edu")

	require.NoError(t, db.UpdateProfile(ctx, gone.ID, ProfileUpdate{
		ReplaceContacts: []*EmergencyContact{{UserID: gone.ID, Name: "Mom", Phone: "111"}},
		UpsertAuthority: &Authority{Name: "Campus Safety", Email: "safety@college.edu"},
	}))

	require.NoError(t, db.DeleteUser(ctx, gone.ID))

	_, err := db.GetUserByID(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	contacts, err := db.ListEmergencyContacts(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	_, err = db.GetAuthorityByUser(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Other users are untouched.
	_, err = db.GetUserByID(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, db.DeleteUser(ctx, gone.ID), ErrNotFound)
}

func TestUpdateProfileReplacesContacts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "studentone", "s1@college.edu")

	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		ReplaceContacts: []*EmergencyContact{
			{UserID: user.ID, Name: "Mom", Phone: "111", Relationship: "mother"},
			{UserID: user.ID, Name: "Dad", Phone: "222", Relationship: "father"},
		},
	}))

	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		ReplaceContacts: []*EmergencyContact{
			{UserID: user.ID, Name: "Roommate", Phone: "333", Relationship: "friend"},
		},
	}))

	contacts, err := db.ListEmergencyContacts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Roommate", contacts[0].Name)
}

func TestUpdateProfileUpsertsAuthority(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "studentone", "s1@college.edu")

	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		UpsertAuthority: &Authority{Name: "Campus Safety", Email: "safety@college.edu", Type: "college"},
	}))
	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		UpsertAuthority: &Authority{Name: "City Police", Email: "police@city.gov", Type: "police"},
	}))

	authority, err := db.GetAuthorityByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "City Police", authority.Name)
	assert.Equal(t, "police@city.gov", authority.Email)
}

func TestUpdateProfileFieldsAndNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "studentone", "s1@college.edu")

	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Fields: map[string]any{"phone": "555-0101", "blood_group": "O+"},
	}))
	got, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0101", got.Phone)
	assert.Equal(t, "O+", got.BloodGroup)

	// Re-submitting identical values is still a successful update, not a
	// missing user. The outcome must not depend on how many rows the
	// driver reports as affected.
	require.NoError(t, db.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Fields: map[string]any{"phone": "555-0101", "blood_group": "O+"},
	}))

	err = db.UpdateProfile(ctx, 9999, ProfileUpdate{Fields: map[string]any{"phone": "1"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "studentone", "s1@college.edu")

	report := &Report{
		UserID:     user.ID,
		Title:      "Harassment near library",
		Status:     ReportStatusPending,
		OccurredAt: time.Now(),
		Latitude:   12.97,
		Longitude:  77.59,
	}
	require.NoError(t, db.CreateReport(ctx, report))

	mine, err := db.GetReportsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ReportStatusPending, mine[0].Status)
	assert.Equal(t, user.ID, mine[0].UserID)

	// pending -> in_progress is allowed; repeating it is idempotent.
	require.NoError(t, db.UpdateReportStatus(ctx, report.ID, ReportStatusInProgress))
	require.NoError(t, db.UpdateReportStatus(ctx, report.ID, ReportStatusInProgress))

	got, err := db.GetReportByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, ReportStatusInProgress, got.Status)

	// in_progress -> pending is not in the table.
	assert.ErrorIs(t, db.UpdateReportStatus(ctx, report.ID, ReportStatusPending), ErrInvalidTransition)

	// Unknown status strings never reach the database.
	assert.ErrorIs(t, db.UpdateReportStatus(ctx, report.ID, ReportStatus("escalated")), ErrInvalidTransition)

	require.NoError(t, db.UpdateReportStatus(ctx, report.ID, ReportStatusResolved))
	assert.ErrorIs(t, db.UpdateReportStatus(ctx, report.ID, ReportStatusRejected), ErrInvalidTransition)

	require.NoError(t, db.DeleteReport(ctx, report.ID))
	assert.ErrorIs(t, db.DeleteReport(ctx, report.ID), ErrNotFound)
}

func TestSirenAlertCursor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"Anonymous", "studentone", "Anonymous"} {
		require.NoError(t, db.CreateSirenAlert(ctx, &SirenAlert{
			IncidentNumber: time.Now().Format("20060102") + "-" + name + string(rune('a'+i)),
			Username:       name,
			Title:          "help",
			Status:         "pending",
		}))
	}

	all, err := db.ListSirenAlertsAfter(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ascending, monotonic IDs.
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)

	tail, err := db.ListSirenAlertsAfter(ctx, all[0].ID)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, all[1].ID, tail[0].ID)
}

func TestOutboxTransactional(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "studentone", "s1@college.edu")

	report := &Report{UserID: user.ID, Title: "t", Status: ReportStatusPending}
	require.NoError(t, db.CreateReport(ctx, report,
		&Notification{Kind: "report_created", Recipient: "s1@college.edu", Subject: "Report received", Status: NotificationPending},
		&Notification{Kind: "report_routed", Recipient: "police@campus.edu", Subject: "New report", Status: NotificationPending},
	))

	pending, err := db.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, db.MarkNotificationSent(ctx, pending[0].ID))
	require.NoError(t, db.MarkNotificationFailed(ctx, pending[1].ID, 1, "smtp timeout", false, time.Now().Add(-time.Second)))

	pending, err = db.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)

	// A failure deferred into the future is invisible until then.
	deferred := pending[0].ID
	require.NoError(t, db.MarkNotificationFailed(ctx, deferred, 2, "smtp timeout", false, time.Now().Add(time.Hour)))
	pending, err = db.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, db.MarkNotificationFailed(ctx, deferred, 5, "smtp timeout", true, time.Now()))
	pending, err = db.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAdminCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	admin := &Admin{Username: "adminuser1", Password: "hashed"}
	require.NoError(t, db.CreateAdmin(ctx, admin))

	assert.ErrorIs(t, db.CreateAdmin(ctx, &Admin{Username: "adminuser1", Password: "x"}), ErrDuplicateKey)

	got, err := db.GetAdminByUsername(ctx, "adminuser1")
	require.NoError(t, err)

	got.Username = "adminrenamed"
	require.NoError(t, db.UpdateAdmin(ctx, got))

	byID, err := db.GetAdminByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "adminrenamed", byID.Username)
}
