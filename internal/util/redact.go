package util

import "regexp"

var (
	reEmail   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reSession = regexp.MustCompile(`(?i)(session_id|access_token|password)(["']?\s*[=:]\s*["']?)([^"'&\s,}]+)`)
	reBearer  = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`)
	reToken   = regexp.MustCompile(`(?i)((?:api|secret|token|key)[=:]\s*)[A-Za-z0-9-_]{8,}`)
)

// RedactSecrets masks credentials, passwords and e-mail addresses.
func RedactSecrets(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reSession.ReplaceAllString(s, "${1}${2}[redacted]")
	s = reBearer.ReplaceAllString(s, "${1}[redacted]")
	s = reToken.ReplaceAllString(s, "${1}[redacted]")
	return s
}
