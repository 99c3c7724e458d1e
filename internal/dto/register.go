package dto

type RegistrationRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ConfirmationRequest struct {
	Code string `json:"code"`
}

type EmailResendRequest struct {
	Email string `json:"email"`
}

type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}
