package types

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Protocol bounds shared by every implementation of schema version 1.
const (
	AliasLength       = 35
	MessageBodyLength = 140
)

// ValidateAlias checks alias against the length and charset rules.
//
// Length is counted in UTF-8 bytes. NUL is reserved as the wire padding byte.
func ValidateAlias(alias string) error {
	if alias == "" {
		return Wrap(CodeInvalidAlias, "alias is empty", nil)
	}
	if len(alias) > AliasLength {
		return Wrap(CodeInvalidAlias,
			fmt.Sprintf("alias is %d bytes, limit is %d", len(alias), AliasLength), nil)
	}
	if !utf8.ValidString(alias) {
		return Wrap(CodeInvalidAlias, "alias is not valid UTF-8", nil)
	}
	for _, r := range alias {
		if r == 0 || unicode.IsControl(r) {
			return Wrap(CodeInvalidAlias, fmt.Sprintf("alias contains control character %U", r), nil)
		}
	}
	return nil
}

// ValidateBody checks a message body against the length and charset rules.
func ValidateBody(body string) error {
	if len(body) > MessageBodyLength {
		return Wrap(CodeEncoding,
			fmt.Sprintf("body is %d bytes, limit is %d", len(body), MessageBodyLength), nil)
	}
	if !utf8.ValidString(body) {
		return Wrap(CodeEncoding, "body is not valid UTF-8", nil)
	}
	for i := 0; i < len(body); i++ {
		if body[i] == 0 {
			return Wrap(CodeEncoding, "body contains NUL", nil)
		}
	}
	return nil
}
