package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")

	// form validation
	ErrInvalidPropertyType = errors.New("please select a valid property type")
	ErrInvalidPropertySize = errors.New("property size is not valid for the selected type")
	ErrAddressRequired     = errors.New("property address is required")
	ErrAddressTooShort     = errors.New("address must be at least 10 characters")
	ErrAddressTooLong      = errors.New("address must be no more than 200 characters")
	ErrAddressCharset      = errors.New("address contains invalid characters")
	ErrLegalTooLong        = errors.New("description must be no more than 500 characters")
)
