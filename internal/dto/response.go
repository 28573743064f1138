package dto

// Response is the success envelope shared by every JSON endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(data any) Response { return Response{Success: true, Data: data} }

func OKMessage(msg string) Response { return Response{Success: true, Message: msg} }
