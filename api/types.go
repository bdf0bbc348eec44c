package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	commentHandler commentHandler
	userHandler    userHandler
	tagHandler     tagHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

type projectRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,min=1,max=500"`
	Content     string   `json:"content" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,uuid"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type profileRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Bio        *string `json:"bio" validate:"omitempty,max=500"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	WebsiteURL *string `json:"websiteUrl" validate:"omitempty,url"`
}

type tagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type successResponse struct {
	Success bool `json:"success"`
}
