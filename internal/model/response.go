package model

// ErrorMessage is the fixed text returned in every error payload.
const ErrorMessage = "Whoops, we seem to have run into an issue"

// ErrorResponse is the JSON body sent when a forecast cannot be produced.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewErrorResponse builds an error payload with an optional failure detail.
func NewErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{
		Error:   ErrorMessage,
		Message: detail,
	}
}
