package handler

import (
	"strings"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/common/dto"
)

func toUserInfo(u *database.User) dto.UserInfo {
	return dto.UserInfo{
		ID:                u.ID,
		Username:          u.Username,
		CollegeEmail:      u.CollegeEmail,
		PersonalEmail:     u.PersonalEmail,
		Phone:             u.Phone,
		Address:           u.Address,
		College:           u.College,
		Course:            u.Course,
		Year:              u.Year,
		BloodGroup:        u.BloodGroup,
		MedicalConditions: u.MedicalConditions,
		Allergies:         u.Allergies,
		Medications:       u.Medications,
		CreatedAt:         u.CreatedAt,
	}
}

func toUserInfos(users []*database.User) []dto.UserInfo {
	out := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, toUserInfo(u))
	}
	return out
}

func toReportInfo(r *database.Report) dto.ReportInfo {
	return dto.ReportInfo{
		ID:              r.ID,
		UserID:          r.UserID,
		Title:           r.Title,
		Description:     r.Description,
		Status:          string(r.Status),
		OccurredAt:      r.OccurredAt,
		Location:        dto.Location{Latitude: r.Latitude, Longitude: r.Longitude},
		HarasserDetails: r.HarasserDetails,
		VideoLink:       r.VideoLink,
		ImageLink:       r.ImageLink,
		AudioLink:       r.AudioLink,
		WhomToReport:    r.WhomToReport,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toReportInfos(reports []*database.Report) []dto.ReportInfo {
	out := make([]dto.ReportInfo, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportInfo(r))
	}
	return out
}

func toSirenInfo(a *database.SirenAlert) dto.SirenAlertInfo {
	return dto.SirenAlertInfo{
		ID:             a.ID,
		IncidentNumber: a.IncidentNumber,
		Username:       a.Username,
		Title:          a.Title,
		Description:    a.Description,
		Location:       dto.Location{Latitude: a.Latitude, Longitude: a.Longitude},
		VideoLink:      a.VideoLink,
		ImageLink:      a.ImageLink,
		AudioLink:      a.AudioLink,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
	}
}

func toSirenInfos(alerts []*database.SirenAlert) []dto.SirenAlertInfo {
	out := make([]dto.SirenAlertInfo, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toSirenInfo(a))
	}
	return out
}

// normalizeStatus maps client status spellings ("In Progress", "PENDING")
// onto the canonical enum values.
func normalizeStatus(s string) database.ReportStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return database.ReportStatus(s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
