package application

import "errors"

var ErrNothingToConvert = errors.New("nothing to convert")
var ErrInvalidAmount = errors.New("invalid amount")
var ErrProModeRequired = errors.New("pro mode required")
var ErrStorageDisabled = errors.New("storage disabled")
