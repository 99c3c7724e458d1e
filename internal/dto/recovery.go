package dto

type PasswordRecoveryRequest struct {
	Email string `json:"email"`
}

type NewPasswordRequest struct {
	NewPassword  string `json:"newPassword"`
	RecoveryCode string `json:"recoveryCode"`
}
