/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package utilities

import (
	"strings"
)

// A `flag.Value` compatible Value that accepts a comma separated string and
// appends its non-blank items, so the flag may also be repeated.
type CommaValue struct {
	Value *[]string
}

func NewCommaValue() CommaValue {
	return CommaValue{Value: &[]string{}}
}

func (v CommaValue) String() string {
	if v.Value != nil {
		return strings.Join(*v.Value, ",")
	}
	return ""
}

func (v CommaValue) Set(s string) error {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*v.Value = append(*v.Value, item)
		}
	}
	return nil
}
