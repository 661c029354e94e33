// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phoneCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// E.164-style: optional + prefix, 7-15 digits, no leading zero
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phoneCleaner.Replace(phone))
}
