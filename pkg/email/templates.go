package email

import "fmt"

func verificationTemplate(name, url string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: system-ui, sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2>Verify your email</h2>
  <p>Hi %s,</p>
  <p>Thanks for signing up for Fold. Confirm your email address to activate your account:</p>
  <p><a href="%s" style="display: inline-block; padding: 12px 24px; background: #6366F1; color: #fff; border-radius: 8px; text-decoration: none;">Verify Email</a></p>
  <p>If the button does not work, copy this link into your browser:</p>
  <p><a href="%s">%s</a></p>
  <p>This link expires in 24 hours. If you did not create an account, you can ignore this email.</p>
</body>
</html>`, name, url, url, url)
}

func passwordResetTemplate(name, url string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: system-ui, sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2>Reset your password</h2>
  <p>Hi %s,</p>
  <p>We received a request to reset the password for your Fold account:</p>
  <p><a href="%s" style="display: inline-block; padding: 12px 24px; background: #6366F1; color: #fff; border-radius: 8px; text-decoration: none;">Reset Password</a></p>
  <p>This link expires in 1 hour. If you did not request a reset, your password is unchanged and you can ignore this email.</p>
</body>
</html>`, name, url)
}

func passwordChangedTemplate(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: system-ui, sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2>Password changed</h2>
  <p>Hi %s,</p>
  <p>The password for your Fold account was just changed and all other sessions were signed out.</p>
  <p>If this was not you, reset your password immediately.</p>
</body>
</html>`, name)
}
