package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minDescriptionLength = 5
	minPasswordLength    = 6
)

func notEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validPlaceText(title, description string) bool {
	return notEmpty(title) && utf8.RuneCountInString(strings.TrimSpace(description)) >= minDescriptionLength
}
