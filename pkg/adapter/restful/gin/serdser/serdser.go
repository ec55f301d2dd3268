// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared by the resource packages.
package serdser

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/parkade/pkg/core/cerr"
)

// Bind deserializes the request into req using the b binding and
// validates it. If it fails, an error response is written and false
// is returned. Validation errors are reported as a map from the field
// names to their error messages.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return reportBindErr(c, c.ShouldBindWith(req, b))
}

// BindUri is like Bind, but deserializes the path params.
func BindUri(c *gin.Context, req any) bool {
	return reportBindErr(c, c.ShouldBindUri(req))
}

func reportBindErr(c *gin.Context, err error) bool {
	switch err := err.(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	if elist, ok := (*errs)[name]; !ok {
		(*errs)[name] = msgs
	} else {
		(*errs)[name] = append(elist, msgs...)
	}
}

func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// IntQuery parses the name query parameter. The def value is returned
// when it is absent. An error response is written if it is not an
// integer.
func IntQuery(c *gin.Context, name string, def int) (int, bool) {
	s, ok := c.GetQuery(name)
	if !ok || s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		var errs map[string][]string
		AddErr(&errs, name, "Query param "+name+" is not an integer.")
		c.JSON(http.StatusBadRequest, errs)
		return 0, false
	}
	return n, true
}

// SerErr writes err as a {"detail": message} response. The status code
// is taken from the *cerr.Error kind, and unclassified errors are
// reported as internal server errors.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": err.Error(),
	})
}

// List returns s, or an empty slice if s is nil, so it is serialized
// as [] instead of null.
func List[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
