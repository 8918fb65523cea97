package dto

// AdminSignupRequest represents an admin signup request
type AdminSignupRequest struct {
	Username string `json:"username" binding:"required,min=8,max=16"`
	Password string `json:"password" binding:"required,min=10,max=12"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// AdminSigninRequest represents an admin signin request
type AdminSigninRequest struct {
	Username string `json:"username" binding:"required,min=8,max=16"`
	Password string `json:"password" binding:"required,min=10,max=12"`
}

// AdminUpdateRequest rotates admin credentials; the caller must sign in
// again afterwards.
type AdminUpdateRequest struct {
	Username string `json:"username" binding:"required,min=8,max=16"`
	Password string `json:"password" binding:"required,min=10,max=12"`
}
