// Package errors defines AppError, the error type every HTTP-facing
// operation is translated into, together with the machine-readable codes
// clients switch on.
package errors
