package gdocs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// AuthError means the credential is missing, expired beyond refresh, or denied.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NotFoundError means the document id is invalid or not accessible to the user.
type NotFoundError struct {
	DocumentID string
	Cause      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found or not accessible", e.DocumentID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// ConflictError means the document changed, or has an unexpected shape, between read and write.
type ConflictError struct {
	DocumentID string
	Message    string
	Cause      error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflict saving %q: %s: %v", e.DocumentID, e.Message, e.Cause)
	}
	return fmt.Sprintf("conflict saving %q: %s", e.DocumentID, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// classify converts a Docs API failure into the gateway's error taxonomy.
// Errors that fit no category are wrapped with the operation name.
func classify(op, documentID string, err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return err
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s %q: %w", op, documentID, err)
	}

	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: fmt.Sprintf("access to document %q denied", documentID), Cause: err}
	case http.StatusNotFound:
		return &NotFoundError{DocumentID: documentID, Cause: err}
	case http.StatusConflict:
		return &ConflictError{DocumentID: documentID, Message: "document was modified concurrently", Cause: err}
	case http.StatusBadRequest:
		if isFailedPrecondition(apiErr) {
			return &ConflictError{DocumentID: documentID, Message: "document revision changed since it was read", Cause: err}
		}
	}
	return fmt.Errorf("%s %q: %w", op, documentID, err)
}

func isFailedPrecondition(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		if strings.EqualFold(item.Reason, "failedPrecondition") {
			return true
		}
	}
	msg := strings.ToLower(apiErr.Message + " " + apiErr.Body)
	return strings.Contains(msg, "failed_precondition") ||
		strings.Contains(msg, "failedprecondition") ||
		strings.Contains(msg, "required revision")
}
