package errors

import "fmt"

var (
	ErrParticipantExists   = fmt.Errorf("participant name already taken")
	ErrParticipantNotFound = fmt.Errorf("participant not found")
	ErrMessageNotFound     = fmt.Errorf("message not found")
	ErrNotMessageAuthor    = fmt.Errorf("acting user is not the message author")
	ErrInvalidMessage      = fmt.Errorf("invalid message payload")
	ErrInvalidName         = fmt.Errorf("invalid participant name")
	ErrNoDocument          = fmt.Errorf("no document for key")
	ErrDocumentExists      = fmt.Errorf("document already exists for key")
)
