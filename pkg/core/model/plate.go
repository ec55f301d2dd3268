// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Plate is a normalized vehicle license plate. Normalized plates
// contain 3 to 8 upper case ASCII letters or digits and nothing else.
type Plate string

// ErrInvalidPlate indicates that a plate could not be normalized into
// 3 to 8 alphanumeric characters. Callers know the rejected input, so
// it is not included in the error value.
var ErrInvalidPlate = errors.New(
	"plate must have 3 to 8 letters or digits",
)

var plateValidator = validator.New(validator.WithRequiredStructEnabled())

// ParsePlate strips the hyphen and whitespace separators from s,
// converts it to upper case, and validates the result.
// For invalid plates, an empty Plate and ErrInvalidPlate are returned.
func ParsePlate(s string) (Plate, error) {
	p := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
	if err := plateValidator.Var(p, "required,alphanum,min=3,max=8"); err != nil {
		return "", ErrInvalidPlate
	}
	return Plate(p), nil
}

// String returns the plate as a plain string.
func (p Plate) String() string {
	return string(p)
}
