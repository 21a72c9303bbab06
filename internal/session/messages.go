package session

// User-facing texts. Failure alerts read "<error text> - <detail>".
const (
	msgLoginRedirectError = "Failed to retrieve login URL"

	msgPerformLogin      = "Logging in..."
	msgPerformLoginError = "Login failed"

	msgSetTokenError = "Failed to apply session token"
	msgRestoreError  = "Failed to restore session"

	msgRefreshToken      = "Refreshing session..."
	msgRefreshTokenError = "Failed to refresh session, please log in again"

	msgGetAccountDetails      = "Loading account details..."
	msgGetAccountDetailsError = "Failed to load account details"

	msgEditAccount        = "Updating account details..."
	msgEditAccountError   = "Failed to update account details"
	msgEditAccountSuccess = "Account details updated"

	logTokenExpired = "token from storage is expired, clearing stored data"
)
