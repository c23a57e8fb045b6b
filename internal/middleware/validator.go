package middleware

import (
	"fmt"
	"regexp"
)

var caseIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateCaseID checks the shape of a case identifier taken from a URL.
func ValidateCaseID(id string) error {
	if !caseIDPattern.MatchString(id) {
		return fmt.Errorf("invalid case id format")
	}
	return nil
}
