package handler

import "github.com/autoparts/catalog-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Secret   string `json:"secret"   validate:"required,max=72"`
}

type registerResponse struct {
	Message string           `json:"message"`
	User    *domain.Identity `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type toggleResponse struct {
	Message string       `json:"message"`
	Part    *domain.Part `json:"part"`
}
