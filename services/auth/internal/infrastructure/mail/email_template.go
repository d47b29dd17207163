package mail

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
)

// VerificationURL builds <baseURL>/auth/verify?token=<code>.
func VerificationURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/verify?token=" + url.QueryEscape(code)
}

// PasswordResetURL builds <baseURL>/auth/reset-password?token=<token>.
func PasswordResetURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/reset-password?token=" + url.QueryEscape(token)
}

// VerificationEmail renders the email carrying a verification code and link
// valid for ttl.
func VerificationEmail(to, siteName, code, link string, ttl time.Duration) repository.MailMessage {
	expires := FormatExpiry(ttl)
	return repository.MailMessage{
		To:      to,
		Subject: fmt.Sprintf("Verify your %s account", siteName),
		Text:    fmt.Sprintf("Your verification code is: %s\nOr open: %s\nThe code expires in %s.", code, link, expires),
		HTML: fmt.Sprintf(`<p>Your verification code is:</p>
<h2>%s</h2>
<p>Or click the following link:</p>
<a href="%s">%s</a>
<p>The code expires in %s.</p>`, html.EscapeString(code), html.EscapeString(link), html.EscapeString(link), expires),
	}
}

// PasswordResetEmail renders the email carrying a reset link valid for ttl.
func PasswordResetEmail(to, siteName, link string, ttl time.Duration) repository.MailMessage {
	expires := FormatExpiry(ttl)
	return repository.MailMessage{
		To:      to,
		Subject: fmt.Sprintf("Reset your %s password", siteName),
		Text:    fmt.Sprintf("Reset your password using this link: %s\nThe link expires in %s.", link, expires),
		HTML: fmt.Sprintf(`<p>You asked to reset your password.</p>
<p><a href="%s">Reset password</a></p>
<p>The link expires in %s. If you did not ask for this, ignore this email.</p>`, html.EscapeString(link), expires),
	}
}

// FormatExpiry spells a token lifetime out for people: "15 minutes",
// "1 hour", "2 days". Odd values fall back to the duration string.
func FormatExpiry(ttl time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, u := range units {
		if ttl >= u.size && ttl%u.size == 0 {
			n := int64(ttl / u.size)
			if n == 1 {
				return "1 " + u.name
			}
			return fmt.Sprintf("%d %ss", n, u.name)
		}
	}
	return ttl.Round(time.Second).String()
}
