package errors

import (
	"time"

	"varbrowser/api/models/dtos"
)

/*
	Utility functions to facillitate returning error responses to HTTP clients
*/

// -- Lookup failures are reported in-band with a 200 status
func CreateSimpleError(message string) dtos.ErrorResponse {
	return dtos.ErrorResponse{
		Error: message,
	}
}

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      400,
		Message:   "Bad Request",
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}

// --
