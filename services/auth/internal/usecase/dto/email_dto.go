package dto

// SendEmailRequest is the body of POST /api/auth/send-email. Every field is required.
type SendEmailRequest struct {
	To      string `json:"to" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

// VerifySMTPRequest is the body of POST /api/verify-smtp. The password is
// always the stored one.
type VerifySMTPRequest struct {
	Host   string `json:"host" validate:"required"`
	Port   int    `json:"port" validate:"min=1,max=65535"`
	Secure bool   `json:"secure"`
	User   string `json:"user" validate:"required"`
}
