// Package validate is the single field-validation engine shared by the form
// state machine and the registration endpoint. Both trust boundaries must
// enforce identical rules with identical messages, so neither side is allowed
// to grow its own copy of these checks.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"enroll/pkg/email"
)

// Field names match the wire contract and the form inputs.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldConfirmPassword,
}

// ServerFields lists the fields the endpoint validates. confirmPassword is
// client-only and never transmitted.
var ServerFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
}

// ReservedAddress always reports as already registered. It exercises the
// uniqueness-conflict path without a real database.
const ReservedAddress = "test@gmail.com"

const gmailDomain = "gmail.com"

// Message is a per-field validation result. A non-nil message means the
// field currently fails validation.
type Message struct {
	Text      string
	IsWarning bool
}

// User-visible rule messages. These strings are part of the contract; the
// client and server must emit them byte for byte.
const (
	MsgFirstNameEmpty   = "First name can't be empty"
	MsgLastNameEmpty    = "Last name can't be empty"
	MsgEmailEmpty       = "Email can't be empty"
	MsgEmailInvalid     = "Please put a valid email"
	MsgEmailNotGmail    = "Must be a Gmail address"
	MsgEmailTaken       = "Email address is already registered"
	MsgPasswordEmpty    = "Password can't be empty"
	MsgPasswordLength   = "Password must be 8-30 characters"
	MsgPasswordClasses  = "Password must contain a lowercase letter, an uppercase letter, a number, and a symbol"
	MsgConfirmEmpty     = "Please confirm your password"
	MsgPasswordMismatch = "Passwords don't match"
)

const (
	passwordMinLen = 8
	passwordMaxLen = 30
)

// passwordSymbols is the accepted symbol class: ASCII printable punctuation.
const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Values holds the raw (un-normalized) form values.
type Values struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Get returns the raw value for a field.
func (v Values) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return v.FirstName
	case FieldLastName:
		return v.LastName
	case FieldEmail:
		return v.Email
	case FieldPassword:
		return v.Password
	case FieldConfirmPassword:
		return v.ConfirmPassword
	}
	return ""
}

// Check validates one field. passwordForComparison is only consulted for
// confirmPassword. Rules run in a fixed order per field; the first failing
// rule wins. A nil result means the field passes.
//
// Check is pure: same inputs, same message, no side effects.
func Check(field Field, value, passwordForComparison string) *Message {
	switch field {
	case FieldFirstName:
		if strings.TrimSpace(value) == "" {
			return warn(MsgFirstNameEmpty)
		}
	case FieldLastName:
		if strings.TrimSpace(value) == "" {
			return warn(MsgLastNameEmpty)
		}
	case FieldEmail:
		return checkEmail(value)
	case FieldPassword:
		return checkPassword(value)
	case FieldConfirmPassword:
		if value == "" {
			return warn(MsgConfirmEmpty)
		}
		if value != passwordForComparison {
			return warn(MsgPasswordMismatch)
		}
	}
	return nil
}

// CheckAll validates the given fields against v, returning a message per
// failing field. The endpoint passes ServerFields, the form engine Fields.
func CheckAll(v Values, fields []Field) map[Field]*Message {
	messages := make(map[Field]*Message)
	for _, f := range fields {
		if msg := Check(f, v.Get(f), v.Password); msg != nil {
			messages[f] = msg
		}
	}
	return messages
}

func checkEmail(value string) *Message {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return warn(MsgEmailEmpty)
	}
	if !email.HasValidShape(trimmed) {
		return warn(MsgEmailInvalid)
	}
	if email.Domain(trimmed) != gmailDomain {
		return warn(MsgEmailNotGmail)
	}
	if email.Normalize(trimmed) == ReservedAddress {
		return warn(MsgEmailTaken)
	}
	return nil
}

// checkPassword never trims: whitespace is significant in a credential.
func checkPassword(value string) *Message {
	if value == "" {
		return warn(MsgPasswordEmpty)
	}
	if n := utf8.RuneCountInString(value); n < passwordMinLen || n > passwordMaxLen {
		return warn(MsgPasswordLength)
	}

	var lower, upper, digit, symbol bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return warn(MsgPasswordClasses)
	}
	return nil
}

func warn(text string) *Message {
	return &Message{Text: text, IsWarning: true}
}
