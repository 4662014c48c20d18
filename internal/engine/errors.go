package engine

import "errors"

var (
	ErrDocumentNotFound = errors.New("approval document not found")
	ErrTemplateNotFound = errors.New("approval template not found")

	// ErrInvalidState is returned when an action is attempted against a
	// document that is not in an eligible state (e.g. submitting a document
	// that is not a draft, recalling one that has already been acted upon)
	ErrInvalidState = errors.New("document is not in a valid state for this action")

	// ErrLineNotActive is returned when the actor's line exists but is not
	// currently active
	ErrLineNotActive = errors.New("approval line is not active")

	// ErrForbidden is returned when the actor is neither the resolved
	// approver nor the current delegate of any line on the document
	ErrForbidden = errors.New("actor is not an approver or delegate on this document")

	// ErrNoLinesResolved is returned when no template line could be resolved
	// to a concrete approver
	ErrNoLinesResolved = errors.New("no approval lines could be resolved from the template")
)
