package dto

import "time"

// Location is a flat coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// CreateReportRequest represents an incident report submission. Location is
// not tagged required: the zero value is a legal coordinate (0,0), which
// "required" would reject.
type CreateReportRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	Location     Location  `json:"location"`
	DateTime     time.Time `json:"dateTime" binding:"required"`
	Harasser     string    `json:"harasser"`
	VideoLink    string    `json:"video_link"`
	ImageLink    string    `json:"image_link"`
	AudioLink    string    `json:"audio_link"`
	WhomToReport string    `json:"whom_to_report"`
}

// ReportInfo is one report in list responses.
type ReportInfo struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"time"`
	Location        Location  `json:"location"`
	HarasserDetails string    `json:"harasser_details,omitempty"`
	VideoLink       string    `json:"video_link"`
	ImageLink       string    `json:"image_link"`
	AudioLink       string    `json:"audio_link"`
	WhomToReport    string    `json:"whom_to_report"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ChangeStatusRequest moves a report through the triage lifecycle.
type ChangeStatusRequest struct {
	ID     uint   `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// DeleteReportRequest identifies the report to delete.
type DeleteReportRequest struct {
	ID uint `json:"id" binding:"required"`
}
