package notify

import (
	"go.uber.org/zap"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/common/config"
)

// Builder renders outbox rows for domain events. It never sends anything;
// handlers persist the rows in the same transaction as the primary write and
// the outbox worker delivers them later.
type Builder struct {
	renderer *Renderer
	cfg      *config.NotifyConfig
	logger   *zap.Logger
}

// NewBuilder creates a new notification builder
func NewBuilder(cfg *config.NotifyConfig, logger *zap.Logger) *Builder {
	return &Builder{
		renderer: NewRenderer(),
		cfg:      cfg,
		logger:   logger.Named("notify"),
	}
}

func (b *Builder) build(kind, recipient, subject, tmpl string, data any) *database.Notification {
	if recipient == "" {
		return nil
	}
	body, err := b.renderer.Render(tmpl, data)
	if err != nil {
		// A broken template must not block the primary operation.
		b.logger.Error("failed to render notification template",
			zap.String("kind", kind), zap.Error(err))
		body = subject
	}
	return &database.Notification{
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    database.NotificationPending,
	}
}

// Welcome announces a fresh signup to the new user.
func (b *Builder) Welcome(user *database.User) *database.Notification {
	return b.build(KindWelcome, user.CollegeEmail, "Welcome to CampusShield", welcomeTemplate, user)
}

// SigninNotice tells the user their account was signed in to.
func (b *Builder) SigninNotice(user *database.User) *database.Notification {
	return b.build(KindSigninNotice, user.CollegeEmail, "New sign-in to your account", signinNoticeTemplate, user)
}

type reportData struct {
	Username    string
	Title       string
	Description string
	Status      database.ReportStatus
	OccurredAt  any
	Latitude    float64
	Longitude   float64
}

func newReportData(username string, report *database.Report) reportData {
	return reportData{
		Username:    username,
		Title:       report.Title,
		Description: report.Description,
		Status:      report.Status,
		OccurredAt:  report.OccurredAt,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
	}
}

// ReportCreated confirms a new report to its author.
func (b *Builder) ReportCreated(user *database.User, report *database.Report) *database.Notification {
	return b.build(KindReportCreated, user.CollegeEmail, "Your report was received",
		reportCreatedTemplate, newReportData(user.Username, report))
}

// ReportRouted escalates a new report to the address mapped from its
// whom_to_report value.
func (b *Builder) ReportRouted(user *database.User, report *database.Report) *database.Notification {
	addr := b.cfg.RouteAddress(report.WhomToReport)
	return b.build(KindReportRouted, addr, "New incident report",
		reportRoutedTemplate, newReportData(user.Username, report))
}

// ReportToAuthority escalates a new report to the user's linked authority.
func (b *Builder) ReportToAuthority(user *database.User, report *database.Report, authority *database.Authority) *database.Notification {
	if authority == nil {
		return nil
	}
	return b.build(KindReportRouted, authority.Email, "New incident report",
		reportRoutedTemplate, newReportData(user.Username, report))
}

// ReportStatusChanged tells the report owner about a triage decision.
func (b *Builder) ReportStatusChanged(user *database.User, report *database.Report, status database.ReportStatus) *database.Notification {
	data := newReportData(user.Username, report)
	data.Status = status
	return b.build(KindReportStatusChanged, user.CollegeEmail, "Your report status changed",
		reportStatusChangedTemplate, data)
}

// ReportDeleted tells the report owner their report was removed.
func (b *Builder) ReportDeleted(user *database.User, report *database.Report) *database.Notification {
	return b.build(KindReportDeleted, user.CollegeEmail, "Your report was removed",
		reportDeletedTemplate, newReportData(user.Username, report))
}

// ProfileUpdated tells the user their profile changed.
func (b *Builder) ProfileUpdated(user *database.User) *database.Notification {
	return b.build(KindProfileUpdated, user.CollegeEmail, "Your profile was updated", profileUpdatedTemplate, user)
}

// SirenToOps escalates a siren alert to the operations address.
func (b *Builder) SirenToOps(alert *database.SirenAlert) *database.Notification {
	return b.build(KindSirenOps, b.cfg.OperationsEmail, "SIREN ALERT", sirenTemplate, alert)
}

// SirenToAuthority escalates a siren alert to the caller's linked authority.
func (b *Builder) SirenToAuthority(alert *database.SirenAlert, authority *database.Authority) *database.Notification {
	if authority == nil {
		return nil
	}
	return b.build(KindSirenAuthority, authority.Email, "SIREN ALERT", sirenTemplate, alert)
}

// Compact drops nil notifications, keeping variadic call sites tidy.
func Compact(notifs ...*database.Notification) []*database.Notification {
	out := make([]*database.Notification, 0, len(notifs))
	for _, n := range notifs {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
