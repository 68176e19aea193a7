package mail

import "fmt"

// SendPasswordReset mails a reset link to a single recipient.
// Failures are the caller's to swallow: the reset endpoint must answer the
// same way whether or not mail went out.
func (s *Sender) SendPasswordReset(to, resetLink string) error {
	html := fmt.Sprintf(`
<div style="font-family: sans-serif; max-width: 480px;">
  <h2>Password reset</h2>
  <p>A password reset was requested for this address. The link below is valid for one hour.</p>
  <p><a href="%s">Reset your password</a></p>
  <p style="color:#888">If you did not request this, you can ignore this email.</p>
</div>`, resetLink)

	return s.Send(Message{
		To:      []string{to},
		Subject: "Password Reset",
		HTML:    html,
	})
}
