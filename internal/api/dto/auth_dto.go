package dto

// RegisterRequest payload for sign-up.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// SignInRequest payload for sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// SignInResponse carries the role claim and access token. The refresh token
// never appears here; it travels only in the cookie.
type SignInResponse struct {
	Message     string `json:"message"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

// RefreshResponse mirrors the sign-in response minus the message.
type RefreshResponse struct {
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

// MessageResponse is the generic success/failure envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
