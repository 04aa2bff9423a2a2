// Package errs defines the error kinds surfaced by budget-sheets. Callers match
// them with errors.As.
package errs

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ConfigurationError reports a missing or invalid configuration value, e.g. a
// credentials directory that does not exist.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s %s (%v)", e.Field, e.Message, e.Err)
	}

	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a failed OAuth2 authorisation, including a
// missing or unusable client secret.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s (%v)", e.Message, e.Err)
	}

	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// RemoteAPIError carries a non-success response from the Google Sheets API.
// Status is the HTTP status code, or 0 if the request never got a response.
type RemoteAPIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteAPIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Message)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// Remote converts an error returned by a Google API call into a RemoteAPIError.
// A nil error stays nil and an error that already is a RemoteAPIError is
// returned unchanged.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}

	var remote *RemoteAPIError
	if errors.As(err, &remote) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		message := gerr.Message
		if message == "" {
			message = gerr.Body
		}

		return &RemoteAPIError{
			Op:      op,
			Status:  gerr.Code,
			Message: message,
			Err:     err,
		}
	}

	return &RemoteAPIError{
		Op:      op,
		Message: err.Error(),
		Err:     err,
	}
}

// TypeCoercionError identifies a cell that could not be converted to the type
// declared for its column. Row is the zero-based index of the data row, i.e.
// excluding the header.
type TypeCoercionError struct {
	Row    int
	Column string
	Value  any
	Type   string
	Err    error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("row %d, column '%s': cannot convert %q to %s", e.Row, e.Column, fmt.Sprintf("%v", e.Value), e.Type)
}

func (e *TypeCoercionError) Unwrap() error {
	return e.Err
}

// DataShapeError reports a payload whose shape does not match its header, e.g.
// a data row with more cells than there are columns.
type DataShapeError struct {
	Row     int
	Message string
}

func (e *DataShapeError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("invalid sheet data: %s", e.Message)
	}

	return fmt.Sprintf("invalid sheet data: row %d %s", e.Row, e.Message)
}
