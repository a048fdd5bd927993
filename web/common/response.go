package common

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// MessageResponse is used where the panel only needs an acknowledgement,
// e.g. logout and delete operations.
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewMessageResponse(message string, data interface{}) *MessageResponse {
	return &MessageResponse{
		Message: message,
		Data:    data,
	}
}
