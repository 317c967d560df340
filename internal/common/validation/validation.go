package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxUsernameLength = 32
	MinUsernameLength = 3
	MinPasswordLength = 6

	MobileDigits = 10
)

var (
	emailRegex  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsRegex = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateUsername checks the display name supplied at sign-up.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}

	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}

	return nil
}

// ValidateEmail checks the account email.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}

	return nil
}

// ValidatePasswords checks the password pair supplied at sign-up.
func ValidatePasswords(password, rePassword string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	if password != rePassword {
		return fmt.Errorf("password did not match, please try again")
	}

	return nil
}

// ValidateMobile requires an exactly ten digit mobile number.
func ValidateMobile(mobile string) error {
	if len(mobile) != MobileDigits || !digitsRegex.MatchString(mobile) {
		return fmt.Errorf("mobile number must be %d digits", MobileDigits)
	}

	return nil
}

// ValidateAccountNumbers requires the re-entered account number to match.
func ValidateAccountNumbers(accountNumber, reAccountNumber string) error {
	if strings.TrimSpace(accountNumber) == "" {
		return fmt.Errorf("account number cannot be empty")
	}

	if accountNumber != reAccountNumber {
		return fmt.Errorf("account number mismatch, please try again")
	}

	return nil
}

// ValidateIFSC checks the bank routing code shape.
func ValidateIFSC(ifsc string) error {
	ifsc = strings.TrimSpace(ifsc)
	if len(ifsc) != 11 {
		return fmt.Errorf("IFSC code must be 11 characters")
	}

	return nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	return nil
}
