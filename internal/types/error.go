package types

import "fmt"

// CustomError carries a typed failure from an upstream provider so callers
// can surface the provider's message instead of a generic one.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
