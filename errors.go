package bulletproofs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrLengthMismatch          = errors.New("batch length does not match the number of parties")
	ErrInvalidShare            = errors.New("invalid proof share")
	ErrMalformedMessage        = errors.New("malformed party message")
	ErrStateConsumed           = errors.New("dealer state already consumed")
	ErrInvalidBitsize          = errors.New("invalid bitsize, must be 8, 16, 32 or 64")
	ErrInvalidAggregation      = errors.New("invalid aggregation size, must be a power of two")
	ErrInvalidGeneratorsLength = errors.New("not enough generators")
	ErrMaliciousDealer         = errors.New("dealer issued a zero challenge")
	ErrFormat                  = errors.New("invalid proof encoding")
	ErrVerification            = errors.New("proof verification failed")
)

// InvalidShareError lists the positions of the shares that failed their audit.
type InvalidShareError struct {
	Indices []int
}

func (e *InvalidShareError) Error() string {
	return fmt.Sprintf("%s: bad shares %v", ErrInvalidShare, e.Indices)
}

func (e *InvalidShareError) Unwrap() error {
	return ErrInvalidShare
}

func checkBitsize(n int64) error {
	switch n {
	case 8, 16, 32, 64:
		return nil
	}
	return errors.Wrapf(ErrInvalidBitsize, "n %d", n)
}

func checkAggregation(m int64) error {
	if m < 1 || m&(m-1) != 0 {
		return errors.Wrapf(ErrInvalidAggregation, "m %d", m)
	}
	return nil
}
