package services

import (
	"fmt"
	"html"
)

const emailFrame = `<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f9f9f9; margin: 0; padding: 0;">
    <div style="max-width: 600px; margin: 20px auto; padding: 20px; background-color: #ffffff; border-radius: 8px;">
      %s
      <p style="font-size: 12px; color: #888888;">Anara Skills Foundation</p>
    </div>
  </body>
</html>`

func otpEmail(code string, validMinutes int) string {
	return fmt.Sprintf(emailFrame, fmt.Sprintf(
		`<h2>Email Verification</h2>
      <p>Your one-time verification code is:</p>
      <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
      <p>This code is valid for %d minutes. Do not share it with anyone.</p>`,
		html.EscapeString(code), validMinutes))
}

func registrationEmail(name, email, regNumber, detailLabel, detail string) string {
	return fmt.Sprintf(emailFrame, fmt.Sprintf(
		`<h2>Welcome to Anara Skills Foundation, %s!</h2>
      <p>Your registration has been completed successfully. Below are your details:</p>
      <p><strong>Name:</strong> %s</p>
      <p><strong>Email:</strong> %s</p>
      <p><strong>Registration Number:</strong> %s</p>
      <p><strong>%s:</strong> %s</p>
      <p>If you have any questions, feel free to reach out to our support team.</p>`,
		html.EscapeString(name), html.EscapeString(name), html.EscapeString(email),
		html.EscapeString(regNumber), html.EscapeString(detailLabel), html.EscapeString(detail)))
}

func temporaryNumberEmail(regNumber string) string {
	return fmt.Sprintf(emailFrame, fmt.Sprintf(
		`<h2>Your Temporary Registration Number</h2>
      <p>Use the number below until your volunteer registration is complete:</p>
      <p style="font-size: 20px; font-weight: bold;">%s</p>`,
		html.EscapeString(regNumber)))
}

func resetPasswordEmail(link string, validMinutes int) string {
	return fmt.Sprintf(emailFrame, fmt.Sprintf(
		`<h2>Reset Your Password</h2>
      <p>Click the link below to reset your password. It expires in %d minutes.</p>
      <p><a href="%s">%s</a></p>
      <p>If you did not request this, you can ignore this email.</p>`,
		validMinutes, html.EscapeString(link), html.EscapeString(link)))
}

func letterheadEmail(message string) string {
	return fmt.Sprintf(emailFrame, fmt.Sprintf(`<p>%s</p>
      <p>Please find the attached letter.</p>`, html.EscapeString(message)))
}
