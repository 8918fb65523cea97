package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/apiserver/limiter"
	"github.com/campusshield/campusshield/internal/apiserver/middleware"
	"github.com/campusshield/campusshield/internal/common/dto"
	"github.com/campusshield/campusshield/internal/common/errorx"
	"github.com/campusshield/campusshield/internal/notify"
	"github.com/campusshield/campusshield/pkg/metrics"
)

const anonymousUsername = "Anonymous"

// SirenHandler accepts emergency alerts from authenticated and anonymous
// callers.
type SirenHandler struct {
	db      database.Database
	builder *notify.Builder
	limiter limiter.Limiter
	errs    *errorx.Handler
	metrics *metrics.Metrics
}

// NewSirenHandler creates a new siren handler
func NewSirenHandler(db database.Database, builder *notify.Builder, l limiter.Limiter, errs *errorx.Handler, m *metrics.Metrics) *SirenHandler {
	return &SirenHandler{
		db:      db,
		builder: builder,
		limiter: l,
		errs:    errs,
		metrics: m,
	}
}

// SendSiren stores a siren alert. Authenticated callers additionally
// escalate to operations and their linked authority; anonymous callers are
// rate limited per client IP.
func (h *SirenHandler) SendSiren(c *gin.Context) {
	var req dto.SendSirenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	ctx := c.Request.Context()
	alert := &database.SirenAlert{
		IncidentNumber: uuid.NewString(),
		Username:       anonymousUsername,
		Title:          req.Title,
		Description:    req.Description,
		Latitude:       req.Location.Latitude,
		Longitude:      req.Location.Longitude,
		VideoLink:      orDefault(req.VideoLink, "No Video"),
		ImageLink:      orDefault(req.ImageLink, "No Image"),
		AudioLink:      orDefault(req.AudioLink, "No Audio"),
		Status:         "pending",
	}

	var notifs []*database.Notification
	caller := "anonymous"

	// A token for a deleted account is treated the same as no token: the
	// alert still goes through, just without the authenticated escalations.
	// Any other lookup failure is a database problem and must not silently
	// strip the caller's identity.
	if claims, ok := middleware.GetClaims(c); ok {
		user, err := h.db.GetUserByID(ctx, claims.UserID)
		switch {
		case err == nil:
			caller = "user"
			alert.Username = user.Username
			alert.UserID = &user.ID

			authority, err := h.db.GetAuthorityByUser(ctx, user.ID)
			if err != nil && !errors.Is(err, database.ErrNotFound) {
				h.errs.Render(c, errorx.Internal("An error occurred while sending the siren alert", err))
				return
			}
			notifs = notify.Compact(
				h.builder.SirenToOps(alert),
				h.builder.SirenToAuthority(alert, authority),
			)
		case errors.Is(err, database.ErrNotFound):
			// fall through to the anonymous path
		default:
			h.errs.Render(c, errorx.Internal("An error occurred while sending the siren alert", err))
			return
		}
	}

	if caller == "anonymous" && h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			// Limiter outage must not block an emergency alert.
			allowed = true
		}
		if !allowed {
			h.errs.Render(c, errorx.RateLimited("Too many siren alerts from this address, please wait"))
			return
		}
	}

	if err := h.db.CreateSirenAlert(ctx, alert, notifs...); err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while sending the siren alert", err))
		return
	}
	if h.metrics != nil {
		h.metrics.SirenReceived(caller)
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":             fmt.Sprintf("Siren Alert sent successfully with id:%d", alert.ID),
		"id":              alert.ID,
		"incident_number": alert.IncidentNumber,
		"success":         true,
	})
}
