package assistant

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("assistant unavailable")
)

const (
	apologyMessage       = "Sorry, I am having trouble connecting. Please try again later."
	notUnderstoodMessage = "I'm sorry, I couldn't understand that. Can you please rephrase?"
	abandonedMessage     = "No problem, I've cancelled this booking request. Is there anything else I can help you with?"
	busyMessage          = "Please wait for my reply before sending another message."
)
