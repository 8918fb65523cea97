package dto

import "time"

// SendSirenRequest is an emergency alert. It is accepted with or without
// authentication. Location carries no required tag so that (0,0) validates.
type SendSirenRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
	VideoLink   string   `json:"video_link"`
	ImageLink   string   `json:"image_link"`
	AudioLink   string   `json:"audio_link"`
}

// SirenAlertInfo is one alert in admin list responses. ID is monotonic and
// serves as the polling cursor.
type SirenAlertInfo struct {
	ID             uint      `json:"id"`
	IncidentNumber string    `json:"incident_number"`
	Username       string    `json:"username"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Location       Location  `json:"location"`
	VideoLink      string    `json:"video_link"`
	ImageLink      string    `json:"image_link"`
	AudioLink      string    `json:"audio_link"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
