package request

type SignUpRequest struct {
	EmailPhoneNumber string `json:"email_phone_number" validate:"required"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"required,numeric,len=4"`
}

// CompleteProfileRequest fields have additional business checks in the
// service layer: 5-30 characters and not purely numeric.
type CompleteProfileRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type UploadPhotoRequest struct {
	Image string `json:"image" validate:"required"`
}

type LoginRequest struct {
	UserInput string `json:"user_input" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type ForgotPasswordRequest struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}
