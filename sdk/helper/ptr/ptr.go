// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ptr

func BoolToPtr(b bool) *bool {
	return &b
}

func IntToPtr(i int) *int {
	return &i
}

func StringToPtr(s string) *string {
	return &s
}

// PtrToInt dereferences the pointer, returning zero when it is nil.
func PtrToInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
