package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/apiserver/middleware"
	"github.com/campusshield/campusshield/internal/auth/jwt"
	"github.com/campusshield/campusshield/internal/common/dto"
	"github.com/campusshield/campusshield/internal/common/errorx"
	"github.com/campusshield/campusshield/internal/notify"
	"github.com/campusshield/campusshield/pkg/metrics"
)

// AdminHandler serves the triage dashboard endpoints.
type AdminHandler struct {
	db         database.Database
	jwtService *jwt.Service
	builder    *notify.Builder
	errs       *errorx.Handler
	metrics    *metrics.Metrics
	bcryptCost int
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db database.Database, jwtService *jwt.Service, builder *notify.Builder, errs *errorx.Handler, m *metrics.Metrics, bcryptCost int) *AdminHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AdminHandler{
		db:         db,
		jwtService: jwtService,
		builder:    builder,
		errs:       errs,
		metrics:    m,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a triage account.
func (h *AdminHandler) Signup(c *gin.Context) {
	var req dto.AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while creating the account", err))
		return
	}

	admin := &database.Admin{
		Username: req.Username,
		Password: string(hashed),
		Email:    req.Email,
	}
	if err := h.db.CreateAdmin(c.Request.Context(), admin); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			h.errs.Render(c, errorx.Conflict("Admin with this username already exists"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while creating the account", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":     fmt.Sprintf("Admin account created successfully with id %d, Signin to continue", admin.ID),
		"success": true,
	})
}

// Signin authenticates a triage account and issues an admin token.
func (h *AdminHandler) Signin(c *gin.Context) {
	var req dto.AdminSigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	admin, err := h.db.GetAdminByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.AuthFailed("Invalid username or password"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while signing in", err))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		h.errs.Render(c, errorx.AuthFailed("Invalid username or password"))
		return
	}

	token, err := h.jwtService.GenerateToken(admin.ID, admin.Username, jwt.RoleAdmin)
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while signing in", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin":   adminInfo(admin),
		"token":   token,
		"success": true,
	})
}

// Details returns the calling admin's own account.
func (h *AdminHandler) Details(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		h.errs.Render(c, errorx.AuthFailed("Auth Failed (Invalid Token)"))
		return
	}

	admin, err := h.db.GetAdminByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("Admin not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while fetching admin details", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin":   adminInfo(admin),
		"success": true,
	})
}

// GetUsers lists all registered users.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while fetching users", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":   toUserInfos(users),
		"success": true,
	})
}

// DeleteUser removes a user account and its dependent contact and authority
// rows.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("userId"), 10, 32)
	if err != nil || userID == 0 {
		h.errs.Render(c, errorx.Validation("userId query parameter is required"))
		return
	}

	if err := h.db.DeleteUser(c.Request.Context(), uint(userID)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("User not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while deleting the user", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "User deleted successfully",
		"success": true,
	})
}

// Update rotates the calling admin's credentials. Outstanding tokens remain
// valid until expiry, so the response tells the caller to sign in again.
func (h *AdminHandler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		h.errs.Render(c, errorx.AuthFailed("Auth Failed (Invalid Token)"))
		return
	}

	var req dto.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	ctx := c.Request.Context()
	admin, err := h.db.GetAdminByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("Admin not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while updating the account", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while updating the account", err))
		return
	}

	admin.Username = req.Username
	admin.Password = string(hashed)
	if err := h.db.UpdateAdmin(ctx, admin); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			h.errs.Render(c, errorx.Conflict("Admin with this username already exists"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while updating the account", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Admin account updated successfully. Please Signin again",
		"success": true,
	})
}

// Reports lists every report for triage.
func (h *AdminHandler) Reports(c *gin.Context) {
	reports, err := h.db.ListReports(c.Request.Context())
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while fetching reports", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": toReportInfos(reports),
		"success": true,
	})
}

// ChangeStatus moves a report through the triage lifecycle and notifies the
// report owner. Re-applying the current status is a no-op success so that
// double-clicks on the dashboard stay harmless.
func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	status := normalizeStatus(req.Status)
	if !status.Valid() {
		h.errs.Render(c, errorx.Validation(fmt.Sprintf("unknown status %q", req.Status)))
		return
	}

	ctx := c.Request.Context()
	report, err := h.db.GetReportByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("Report not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while changing the report status", err))
		return
	}

	// A no-op re-set of the current status succeeds without re-notifying
	// the owner.
	var notifs []*database.Notification
	if report.Status != status {
		if owner, err := h.db.GetUserByID(ctx, report.UserID); err == nil {
			notifs = notify.Compact(h.builder.ReportStatusChanged(owner, report, status))
		}
	}

	if err := h.db.UpdateReportStatus(ctx, req.ID, status, notifs...); err != nil {
		switch {
		case errors.Is(err, database.ErrInvalidTransition):
			h.errs.Render(c, errorx.Validation(fmt.Sprintf("report cannot move from %s to %s", report.Status, status)))
		case errors.Is(err, database.ErrNotFound):
			h.errs.Render(c, errorx.NotFound("Report not found"))
		default:
			h.errs.Render(c, errorx.Internal("An error occurred while changing the report status", err))
		}
		return
	}
	if h.metrics != nil {
		h.metrics.ReportAction("status_changed")
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Report status changed successfully",
		"success": true,
	})
}

// DeleteReport removes a report and notifies its owner.
func (h *AdminHandler) DeleteReport(c *gin.Context) {
	var req dto.DeleteReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	ctx := c.Request.Context()
	report, err := h.db.GetReportByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("Report not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while deleting the report", err))
		return
	}

	var notifs []*database.Notification
	if owner, err := h.db.GetUserByID(ctx, report.UserID); err == nil {
		notifs = notify.Compact(h.builder.ReportDeleted(owner, report))
	}

	if err := h.db.DeleteReport(ctx, req.ID, notifs...); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.errs.Render(c, errorx.NotFound("Report not found"))
			return
		}
		h.errs.Render(c, errorx.Internal("An error occurred while deleting the report", err))
		return
	}
	if h.metrics != nil {
		h.metrics.ReportAction("deleted")
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Report deleted successfully",
		"success": true,
	})
}

// Sirens lists siren alerts with ID greater than the "after" cursor, oldest
// first. Dashboards poll with the highest ID they have seen; after=0 (or no
// cursor) returns the full history.
func (h *AdminHandler) Sirens(c *gin.Context) {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			h.errs.Render(c, errorx.Validation("after must be a non-negative integer"))
			return
		}
		after = parsed
	}

	alerts, err := h.db.ListSirenAlertsAfter(c.Request.Context(), uint(after))
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while fetching siren alerts", err))
		return
	}

	cursor := after
	if len(alerts) > 0 {
		cursor = uint64(alerts[len(alerts)-1].ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"sirens":  toSirenInfos(alerts),
		"cursor":  cursor,
		"success": true,
	})
}

func adminInfo(admin *database.Admin) gin.H {
	return gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"email":    admin.Email,
	}
}
