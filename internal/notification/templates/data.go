package templates

// VerifyEmailData holds variables for the auth.verify_email scenario.
type VerifyEmailData struct {
	Link         string
	SupportEmail string
}

// VerifyEmail is the typed handle for the auth.verify_email template.
var VerifyEmail = Expect[VerifyEmailData]("auth.verify_email")

// ResetPasswordData holds variables for the auth.reset_password scenario.
type ResetPasswordData struct {
	Link         string
	SupportEmail string
	// ExpiresIn is a human description of the token lifetime, e.g. "30 minutes".
	ExpiresIn string
}

// ResetPassword is the typed handle for the auth.reset_password template.
var ResetPassword = Expect[ResetPasswordData]("auth.reset_password")
