package shared

import "errors"

// ErrApprovalDenied indicates an owner PIN check failed.
var ErrApprovalDenied = errors.New("approval denied")
