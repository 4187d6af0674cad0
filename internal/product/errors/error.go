// Package errors holds the errors the product service raises.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
