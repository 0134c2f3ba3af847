package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/benx421/ledger/internal/models"
)

// AccountNumberLength is the number of digits in a generated account number,
// check digit included.
const AccountNumberLength = 16

// ValidateLuhn validates an account number using the Luhn algorithm
func ValidateLuhn(accountNumber string) error {
	if len(accountNumber) != AccountNumberLength {
		return fmt.Errorf("invalid account number length: must be %d digits", AccountNumberLength)
	}

	digits := make([]int, 0, len(accountNumber))
	for _, r := range accountNumber {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid account number: must contain only digits")
		}
		digits = append(digits, int(r-'0'))
	}

	if luhnSum(digits, false)%10 != 0 {
		return fmt.Errorf("invalid account number: failed Luhn check")
	}

	return nil
}

// luhnSum adds the digits right to left, doubling every second one. When
// doubleFirst is set the rightmost digit is doubled, which is the layout of a
// payload still missing its check digit.
func luhnSum(digits []int, doubleFirst bool) int {
	sum := 0
	double := doubleFirst

	for i := len(digits) - 1; i >= 0; i-- {
		digit := digits[i]

		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum
}

// GenerateAccountNumber returns a random account number ending in a Luhn check digit
func GenerateAccountNumber() (string, error) {
	digits := make([]int, AccountNumberLength-1)
	ten := big.NewInt(10)

	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate account number: %w", err)
		}
		digits[i] = int(n.Int64())
	}
	if digits[0] == 0 {
		digits[0] = 1
	}

	check := (10 - luhnSum(digits, true)%10) % 10
	digits = append(digits, check)

	buf := make([]byte, len(digits))
	for i, d := range digits {
		buf[i] = byte('0' + d)
	}
	return string(buf), nil
}

// ValidateAmount checks if amount is valid (positive)
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}

	return nil
}

// ValidateSaving checks that crediting amount keeps account within its product cap
func ValidateSaving(account *models.Account, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if !account.CanCredit(amount) {
		return newError(ErrCodeCapExceeded, "amount would exceed the account's maximum balance")
	}
	return nil
}

// ValidateWithdrawal checks that debiting amount leaves account non-negative
func ValidateWithdrawal(account *models.Account, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}
	if !account.CanDebit(amount) {
		return newError(ErrCodeInsufficientFunds, "insufficient funds")
	}
	return nil
}

// ValidateTransfer checks the sender side of a transfer. The receiver's cap is
// only enforced at settlement.
func ValidateTransfer(sender *models.Account, amount int64) error {
	return ValidateWithdrawal(sender, amount)
}
