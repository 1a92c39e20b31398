package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnsupportedTypeConversion is returned when ConvertString has no
// conversion for the target type.
var ErrUnsupportedTypeConversion = errors.New("unsupported type conversion")

// ConvertString converts value into the pointed-to target. arg names the
// argument being converted and is only used in error messages.
func ConvertString(value string, data interface{}, arg string) error {
	switch t := data.(type) {
	case *string:
		*t = value
	case *int:
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("could not parse %s as an integer: %w", arg, err)
		}
		*t = val
	case *int64:
		val, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse %s as an integer: %w", arg, err)
		}
		*t = val
	case *float64:
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("could not parse %s as a number: %w", arg, err)
		}
		*t = val
	case *bool:
		val, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("could not parse %s as a boolean: %w", arg, err)
		}
		*t = val
	case *time.Duration:
		val, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("could not parse %s as a duration: %w", arg, err)
		}
		*t = val
	case *time.Time:
		val, err := dateparse.ParseAny(value)
		if err != nil {
			return fmt.Errorf("could not parse %s as a point in time: %w", arg, err)
		}
		*t = val
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeConversion, arg)
	}

	return nil
}
