package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormDB implements Database on top of a gorm connection. The driver-specific
// constructors in sqlite.go, mysql.go and postgres.go all funnel through
// newGormDB.
type gormDB struct {
	db *gorm.DB
}

func newGormDB(db *gorm.DB) (Database, error) {
	if err := db.AutoMigrate(
		&User{}, &Admin{}, &Report{}, &SirenAlert{},
		&EmergencyContact{}, &Authority{}, &Notification{},
	); err != nil {
		return nil, err
	}
	return &gormDB{db: db}, nil
}

// Close closes the database connection
func (g *gormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the package sentinels. Not every driver
// implements gorm's error translation, so unique violations are additionally
// detected by message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyMessage(err) {
		return ErrDuplicateKey
	}
	return err
}

func isDuplicateKeyMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint")
}

func (g *gormDB) CreateUser(ctx context.Context, user *User, notifs ...*Notification) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := g.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (g *gormDB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (g *gormDB) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := g.db.WithContext(ctx).Order("id asc").Find(&users).Error
	return users, translate(err)
}

func (g *gormDB) DeleteUser(ctx context.Context, id uint) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("user_id = ?", id).Delete(&EmergencyContact{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&Authority{}).Error
	}))
}

func (g *gormDB) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate, notifs ...*Notification) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Existence is checked explicitly: affected-row counts are
		// driver-dependent (MySQL reports changed rows, not matched rows,
		// so a no-op update would look like a missing user).
		var existing User
		if err := tx.Select("id").First(&existing, userID).Error; err != nil {
			return err
		}
		if len(update.Fields) > 0 {
			if err := tx.Model(&User{}).Where("id = ?", userID).Updates(update.Fields).Error; err != nil {
				return err
			}
		}
		if update.ReplaceContacts != nil {
			if err := tx.Where("user_id = ?", userID).Delete(&EmergencyContact{}).Error; err != nil {
				return err
			}
			if len(update.ReplaceContacts) > 0 {
				if err := tx.Create(update.ReplaceContacts).Error; err != nil {
					return err
				}
			}
		}
		if update.UpsertAuthority != nil {
			update.UpsertAuthority.UserID = userID
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "address", "email", "type"}),
			}).Create(update.UpsertAuthority).Error; err != nil {
				return err
			}
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) CreateAdmin(ctx context.Context, admin *Admin) error {
	return translate(g.db.WithContext(ctx).Create(admin).Error)
}

func (g *gormDB) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	var admin Admin
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (g *gormDB) GetAdminByID(ctx context.Context, id uint) (*Admin, error) {
	var admin Admin
	if err := g.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (g *gormDB) UpdateAdmin(ctx context.Context, admin *Admin) error {
	admin.UpdatedAt = time.Now()
	return translate(g.db.WithContext(ctx).Save(admin).Error)
}

func (g *gormDB) CreateReport(ctx context.Context, report *Report, notifs ...*Notification) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) GetReportByID(ctx context.Context, id uint) (*Report, error) {
	var report Report
	if err := g.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (g *gormDB) GetReportsByUser(ctx context.Context, userID uint) ([]*Report, error) {
	var reports []*Report
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error
	return reports, translate(err)
}

func (g *gormDB) ListReports(ctx context.Context) ([]*Report, error) {
	var reports []*Report
	err := g.db.WithContext(ctx).Order("created_at desc").Find(&reports).Error
	return reports, translate(err)
}

func (g *gormDB) UpdateReportStatus(ctx context.Context, id uint, status ReportStatus, notifs ...*Notification) error {
	if !status.Valid() {
		return ErrInvalidTransition
	}
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report Report
		if err := tx.First(&report, id).Error; err != nil {
			return err
		}
		if !report.Status.CanTransition(status) {
			return ErrInvalidTransition
		}
		if err := tx.Model(&Report{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) DeleteReport(ctx context.Context, id uint, notifs ...*Notification) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Report{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) CreateSirenAlert(ctx context.Context, alert *SirenAlert, notifs ...*Notification) error {
	return translate(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(alert).Error; err != nil {
			return err
		}
		return enqueueTx(tx, notifs)
	}))
}

func (g *gormDB) ListSirenAlertsAfter(ctx context.Context, after uint) ([]*SirenAlert, error) {
	var alerts []*SirenAlert
	err := g.db.WithContext(ctx).
		Where("id > ?", after).
		Order("id asc").
		Find(&alerts).Error
	return alerts, translate(err)
}

func (g *gormDB) ListEmergencyContacts(ctx context.Context, userID uint) ([]*EmergencyContact, error) {
	var contacts []*EmergencyContact
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&contacts).Error
	return contacts, translate(err)
}

func (g *gormDB) GetAuthorityByUser(ctx context.Context, userID uint) (*Authority, error) {
	var authority Authority
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&authority).Error; err != nil {
		return nil, translate(err)
	}
	return &authority, nil
}

func enqueueTx(tx *gorm.DB, notifs []*Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	return tx.Create(notifs).Error
}

func (g *gormDB) EnqueueNotifications(ctx context.Context, notifs []*Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	return translate(g.db.WithContext(ctx).Create(notifs).Error)
}

func (g *gormDB) ListPendingNotifications(ctx context.Context, limit int) ([]*Notification, error) {
	var notifs []*Notification
	err := g.db.WithContext(ctx).
		Where("status = ?", NotificationPending).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", time.Now()).
		Order("id asc").
		Limit(limit).
		Find(&notifs).Error
	return notifs, translate(err)
}

func (g *gormDB) MarkNotificationSent(ctx context.Context, id uint) error {
	now := time.Now()
	return translate(g.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  NotificationSent,
			"sent_at": &now,
		}).Error)
}

func (g *gormDB) MarkNotificationFailed(ctx context.Context, id uint, attempts int, lastError string, terminal bool, nextAttempt time.Time) error {
	status := NotificationPending
	if terminal {
		status = NotificationFailed
	}
	return translate(g.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"attempts":        attempts,
			"last_error":      lastError,
			"next_attempt_at": &nextAttempt,
		}).Error)
}
