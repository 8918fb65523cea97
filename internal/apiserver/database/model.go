package database

import "time"

// ReportStatus is the triage status of a report.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusRejected   ReportStatus = "rejected"
)

// reportTransitions is the closed transition table. Resolved and rejected are
// terminal. Re-setting the current status is always allowed so that repeated
// admin actions stay idempotent.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:    {ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected},
	ReportStatusInProgress: {ReportStatusResolved, ReportStatusRejected},
	ReportStatusResolved:   {},
	ReportStatusRejected:   {},
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	_, ok := reportTransitions[s]
	return ok
}

// CanTransition reports whether a report may move from s to next.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// User is a student account. The numeric ID is the identity carried in
// tokens; the username is mutable display data.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username          string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Password          string    `json:"-" gorm:"not null"`
	CollegeEmail      string    `json:"college_email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PersonalEmail     string    `json:"personal_email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	College           string    `json:"college"`
	Course            string    `json:"course"`
	Year              string    `json:"year"`
	BloodGroup        string    `json:"blood_group"`
	MedicalConditions string    `json:"medical_conditions"`
	Allergies         string    `json:"allergies"`
	Medications       string    `json:"medications"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Admin is a credential-only triage account, kept separate from User.
type Admin struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is a user-authored incident record.
type Report struct {
	ID              uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint         `json:"user_id" gorm:"index;not null"`
	Title           string       `json:"title" gorm:"not null"`
	Description     string       `json:"description"`
	Status          ReportStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	OccurredAt      time.Time    `json:"time"`
	Latitude        float64      `json:"latitude"`
	Longitude       float64      `json:"longitude"`
	HarasserDetails string       `json:"harasser_details"`
	VideoLink       string       `json:"video_link"`
	ImageLink       string       `json:"image_link"`
	AudioLink       string       `json:"audio_link"`
	WhomToReport    string       `json:"whom_to_report"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// SirenAlert is an urgent, possibly anonymous, location-tagged distress
// record. The autoincrement ID doubles as the monotonic polling cursor for
// the admin dashboard.
type SirenAlert struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	IncidentNumber string    `json:"incident_number" gorm:"type:varchar(40);uniqueIndex"`
	UserID         *uint     `json:"user_id,omitempty" gorm:"index"`
	Username       string    `json:"username" gorm:"not null;default:'Anonymous'"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	VideoLink      string    `json:"video_link"`
	ImageLink      string    `json:"image_link"`
	AudioLink      string    `json:"audio_link"`
	Status         string    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmergencyContact is a per-user contact, wholesale replaced on profile
// update.
type EmergencyContact struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint   `json:"user_id" gorm:"index;not null"`
	Name         string `json:"name" gorm:"not null"`
	Phone        string `json:"phone" gorm:"not null"`
	Relationship string `json:"relationship"`
}

// Authority is the per-user linked safety contact, upserted on profile
// update.
type Authority struct {
	ID      uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID  uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Name    string `json:"name" gorm:"not null"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Type    string `json:"type"`
}

// NotificationStatus is the outbox delivery state.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is one outbox row. Rows are written in the same transaction
// as the primary write they announce; a background worker delivers them.
type Notification struct {
	ID        uint               `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      string             `json:"kind" gorm:"type:varchar(40);index;not null"`
	Recipient string             `json:"recipient" gorm:"not null"`
	Subject   string             `json:"subject" gorm:"not null"`
	Body      string             `json:"body" gorm:"type:text"`
	Status    NotificationStatus `json:"status" gorm:"type:varchar(20);index;not null;default:'pending'"`
	Attempts  int                `json:"attempts" gorm:"not null;default:0"`
	LastError string             `json:"last_error"`
	// NextAttemptAt defers redelivery after a failure; nil means the row is
	// immediately eligible.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}
