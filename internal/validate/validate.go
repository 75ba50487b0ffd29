package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks input rejected before it reaches the store.
var ErrInvalidInput = errors.New("invalid input")

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s against its `validate` tags. Failures wrap ErrInvalidInput
// and list the offending fields as field=tag pairs.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s=%s", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
}

// Errorf returns an ErrInvalidInput carrying a formatted detail message.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
