package payload

// SignUpRequest is the body of POST /users/signup.
type SignUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ResendVerificationRequest is the body of POST /users/verify.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateSubscriptionRequest is the body of PATCH /users.
type UpdateSubscriptionRequest struct {
	Subscription string `json:"subscription" validate:"required,oneof=starter pro business"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

// SignUpResponse is the body returned by POST /users/signup.
type SignUpResponse struct {
	User UserResponse `json:"user"`
}

// LoginResponse is the body returned by POST /users/login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AvatarResponse is the body returned by PATCH /users/avatars.
type AvatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

// MessageResponse is the uniform {message} body used for simple successes and
// every handled failure.
type MessageResponse struct {
	Message string `json:"message"`
}
