package dto

type LoginRequest struct {
	LoginOrEmail string `json:"loginOrEmail"`
	Password     string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}
