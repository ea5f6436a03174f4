package model

import "regexp"

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	maskPattern    = regexp.MustCompile(`(\d{2})\d{6}(\d{2})`)
)

// IsValidMobile reports whether s is a 10 digit Indian mobile number
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IsValidPincode reports whether s is a 6 digit Indian postal code
func IsValidPincode(s string) bool {
	return pincodePattern.MatchString(s)
}

// MaskMobile hides the middle six digits, e.g. 98******10
func MaskMobile(mobile string) string {
	return maskPattern.ReplaceAllString(mobile, "$1******$2")
}
