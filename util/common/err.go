package common

import (
	"errors"
	"fmt"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

// Combine merges multiple errors into one, skipping nils.
func Combine(errs ...error) error {
	var errorStrings []string
	for _, err := range errs {
		if err != nil {
			errorStrings = append(errorStrings, err.Error())
		}
	}
	if len(errorStrings) == 0 {
		return nil
	}
	msg := ""
	for i, s := range errorStrings {
		if i > 0 {
			msg += "; "
		}
		msg += s
	}
	return errors.New(msg)
}
