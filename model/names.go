package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for labels and tags that collide with index or
// option syntax: empty names, names starting with '-', and numbers.
var ErrInvalidName = errors.New("invalid name")

// ValidateName checks that name can be used as a label or tag.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name[0] == '-':
		return fmt.Errorf("%w: %q starts with '-'", ErrInvalidName, name)
	case isNumber(name):
		return fmt.Errorf("%w: %q is a number", ErrInvalidName, name)
	}
	return nil
}

func isNumber(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 0, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
