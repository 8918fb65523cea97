package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

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

// UserHandler serves the student-facing API.
type UserHandler struct {
	db         database.Database
	jwtService *jwt.Service
	builder    *notify.Builder
	errs       *errorx.Handler
	metrics    *metrics.Metrics
	bcryptCost int
}

// NewUserHandler creates a new user handler
func NewUserHandler(db database.Database, jwtService *jwt.Service, builder *notify.Builder, errs *errorx.Handler, m *metrics.Metrics, bcryptCost int) *UserHandler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{
		db:         db,
		jwtService: jwtService,
		builder:    builder,
		errs:       errs,
		metrics:    m,
		bcryptCost: bcryptCost,
	}
}

// Signup handles user registration
func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while hashing the password. Please try again", err))
		return
	}

	now := time.Now()
	user := &database.User{
		Username:     req.Username,
		Password:     string(hashed),
		CollegeEmail: req.CollegeEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.db.CreateUser(c.Request.Context(), user, notify.Compact(h.builder.Welcome(user))...)
	if errors.Is(err, database.ErrDuplicateKey) {
		h.errs.Render(c, errorx.Conflict("User with this username or email already exists"))
		return
	}
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while creating the account", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":     fmt.Sprintf("Account created successfully with userId %d, Signin to continue", user.ID),
		"success": true,
	})
}

// Signin handles user login
func (h *UserHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	user, err := h.db.GetUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.AuthFailed("Invalid username or password"))
		return
	}
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while signing in", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.errs.Render(c, errorx.AuthFailed("Invalid username or password"))
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username, jwt.RoleUser)
	if err != nil {
		h.errs.Render(c, errorx.Internal("Error while generating auth token. Please try again", err))
		return
	}

	// The signin notice is best effort; a full outbox enqueue failure must
	// not block the login.
	if n := h.builder.SigninNotice(user); n != nil {
		_ = h.db.EnqueueNotifications(c.Request.Context(), []*database.Notification{n})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    toUserInfo(user),
		"token":   token,
		"success": true,
	})
}

// GetReports returns all reports of the authenticated user.
func (h *UserHandler) GetReports(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		h.errs.Render(c, errorx.AuthFailed("Auth Failed (No Token Provided)"))
		return
	}

	reports, err := h.db.GetReportsByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while fetching the reports", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": toReportInfos(reports),
		"success": true,
	})
}

// CreateReport files a new incident report for the authenticated user.
func (h *UserHandler) CreateReport(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		h.errs.Render(c, errorx.AuthFailed("Auth Failed (No Token Provided)"))
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.NotFound("User not found"))
		return
	}
	if err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while creating the report", err))
		return
	}

	report := &database.Report{
		UserID:          user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          database.ReportStatusPending,
		OccurredAt:      req.DateTime,
		Latitude:        req.Location.Latitude,
		Longitude:       req.Location.Longitude,
		HarasserDetails: req.Harasser,
		VideoLink:       orDefault(req.VideoLink, "No Video"),
		ImageLink:       orDefault(req.ImageLink, "No Image"),
		AudioLink:       orDefault(req.AudioLink, "No Audio"),
		WhomToReport:    orDefault(req.WhomToReport, "Unknown"),
	}

	// Linked authority is optional.
	authority, err := h.db.GetAuthorityByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.Internal("An error occurred while creating the report", err))
		return
	}

	notifs := notify.Compact(
		h.builder.ReportCreated(user, report),
		h.builder.ReportRouted(user, report),
		h.builder.ReportToAuthority(user, report, authority),
	)
	if err := h.db.CreateReport(ctx, report, notifs...); err != nil {
		h.errs.Render(c, errorx.Internal("An error occurred while creating the report", err))
		return
	}
	if h.metrics != nil {
		h.metrics.ReportAction("created")
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":     fmt.Sprintf("Report created successfully with id:%d", report.ID),
		"success": true,
	})
}

// UpdateProfile applies a partial profile update. Supplying a password
// rotates it and requires a fresh signin.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		h.errs.Render(c, errorx.AuthFailed("Auth Failed (No Token Provided)"))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Render(c, errorx.Validation("validation failed").WithCause(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.NotFound("User not found"))
		return
	}
	if err != nil {
		h.errs.Render(c, errorx.Internal("Error updating profile", err))
		return
	}

	fields := profileFields(&req)

	passwordRotated := false
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
		if err != nil {
			h.errs.Render(c, errorx.Internal("Error while hashing password", err))
			return
		}
		fields["password"] = string(hashed)
		passwordRotated = true
	}

	update := database.ProfileUpdate{Fields: fields}
	if len(req.EmergencyContacts) > 0 {
		contacts := make([]*database.EmergencyContact, 0, len(req.EmergencyContacts))
		for _, contact := range req.EmergencyContacts {
			contacts = append(contacts, &database.EmergencyContact{
				UserID:       user.ID,
				Name:         contact.Name,
				Phone:        contact.Phone,
				Relationship: contact.Relation,
			})
		}
		update.ReplaceContacts = contacts
	}
	if req.AuthoritiesDetails != nil {
		update.UpsertAuthority = &database.Authority{
			Name:    req.AuthoritiesDetails.Name,
			Phone:   req.AuthoritiesDetails.Phone,
			Address: req.AuthoritiesDetails.Address,
			Email:   req.AuthoritiesDetails.Email,
			Type:    req.AuthoritiesDetails.Type,
		}
	}

	err = h.db.UpdateProfile(ctx, user.ID, update, notify.Compact(h.builder.ProfileUpdated(user))...)
	if errors.Is(err, database.ErrDuplicateKey) {
		h.errs.Render(c, errorx.Conflict("Username or email already taken"))
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.NotFound("User not found"))
		return
	}
	if err != nil {
		h.errs.Render(c, errorx.Internal("Error updating profile", err))
		return
	}

	if passwordRotated {
		c.JSON(http.StatusOK, gin.H{
			"msg":     "Profile updated successfully. Please signin again for authentication",
			"success": true,
		})
		return
	}

	updated, err := h.db.GetUserByID(ctx, user.ID)
	if err != nil {
		h.errs.Render(c, errorx.Internal("Error updating profile", err))
		return
	}
	contacts, err := h.db.ListEmergencyContacts(ctx, user.ID)
	if err != nil {
		h.errs.Render(c, errorx.Internal("Error updating profile", err))
		return
	}
	authority, err := h.db.GetAuthorityByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.errs.Render(c, errorx.Internal("Error updating profile", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Profile updated successfully",
		"success": true,
		"user": gin.H{
			"profile":             toUserInfo(updated),
			"emergency_contacts":  contacts,
			"authorities_details": authority,
		},
	})
}

// profileFields maps non-empty request fields to user table columns.
func profileFields(req *dto.UpdateProfileRequest) map[string]any {
	fields := make(map[string]any)
	set := func(column, value string) {
		if value != "" {
			fields[column] = value
		}
	}
	set("username", req.Username)
	set("college_email", req.CollegeEmail)
	set("personal_email", req.PersonalEmail)
	set("phone", req.Phone)
	set("address", req.Address)
	set("college", req.CollegeName)
	set("course", req.Course)
	set("year", req.Year)
	set("blood_group", req.BloodGroup)
	set("medical_conditions", req.MedicalConditions)
	set("allergies", req.Allergies)
	set("medications", req.Medications)
	return fields
}
