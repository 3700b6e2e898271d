package users

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
)

// ValidateEmail checks the address shape. Deliverability is the server's
// concern; this only catches obvious typos before a request is sent.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("please enter a valid email address")
	}
	return nil
}

// ValidatePasswordStrength checks if a password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
// - Contains at least one special character
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}

// ValidateName checks a first/last name field.
func ValidateName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	if len(name) > 50 {
		return fmt.Errorf("name must be less than 50 characters")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name can only contain letters and spaces")
	}
	return nil
}

// ValidatePhone checks a phone number in loose international form.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("please enter a valid phone number")
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 10 {
		return fmt.Errorf("phone number must be at least 10 digits")
	}
	return nil
}

// ValidatePIN checks a card PIN: exactly four digits.
func ValidatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("PIN must be exactly 4 digits")
	}
	return nil
}

// ValidateRegistration checks the registration form fields that have
// client-side rules. Optional fields are validated only when set.
func ValidateRegistration(email, password, firstName, lastName, phone string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	for _, name := range []string{firstName, lastName} {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if err := ValidateName(name); err != nil {
			return err
		}
	}
	if strings.TrimSpace(phone) != "" {
		if err := ValidatePhone(phone); err != nil {
			return err
		}
	}
	return nil
}
