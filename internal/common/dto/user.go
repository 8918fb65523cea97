package dto

import "time"

// SignupRequest represents a user signup request. Username and password
// length bounds follow the account policy (8-16 and 10-12 characters).
type SignupRequest struct {
	Username     string `json:"username" binding:"required,min=8,max=16"`
	Password     string `json:"password" binding:"required,min=10,max=12"`
	CollegeEmail string `json:"college_email" binding:"required,email"`
}

// SigninRequest represents a user signin request
type SigninRequest struct {
	Username string `json:"username" binding:"required,min=8,max=16"`
	Password string `json:"password" binding:"required,min=10,max=12"`
}

// UserInfo is the profile payload returned on signin and profile reads.
type UserInfo struct {
	ID                uint      `json:"id"`
	Username          string    `json:"username"`
	CollegeEmail      string    `json:"college_email"`
	PersonalEmail     string    `json:"personal_email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	College           string    `json:"college,omitempty"`
	Course            string    `json:"course,omitempty"`
	Year              string    `json:"year,omitempty"`
	BloodGroup        string    `json:"blood_group,omitempty"`
	MedicalConditions string    `json:"medical_conditions,omitempty"`
	Allergies         string    `json:"allergies,omitempty"`
	Medications       string    `json:"medications,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// EmergencyContactInput is one entry of the emergency_contacts array on
// profile update.
type EmergencyContactInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Relation string `json:"relation"`
}

// AuthorityInput is the authorities_details object on profile update.
type AuthorityInput struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email" binding:"omitempty,email"`
	Type    string `json:"type"`
}

// UpdateProfileRequest is a partial profile update. The password, when
// supplied, is rotated and the caller must sign in again.
type UpdateProfileRequest struct {
	Username          string                  `json:"username" binding:"omitempty,min=8,max=16"`
	Password          string                  `json:"password" binding:"omitempty,min=10,max=12"`
	CollegeEmail      string                  `json:"college_email" binding:"omitempty,email"`
	PersonalEmail     string                  `json:"personal_email" binding:"omitempty,email"`
	Phone             string                  `json:"phone"`
	Address           string                  `json:"address"`
	CollegeName       string                  `json:"college_name"`
	Course            string                  `json:"course"`
	Year              string                  `json:"year"`
	BloodGroup        string                  `json:"blood_group"`
	MedicalConditions string                  `json:"medical_conditions"`
	Allergies         string                  `json:"allergies"`
	Medications       string                  `json:"medications"`
	EmergencyContacts []EmergencyContactInput `json:"emergency_contacts" binding:"omitempty,dive"`
	AuthoritiesDetails *AuthorityInput        `json:"authorities_details" binding:"omitempty"`
}
