package finance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// ValidationError reports every missing or malformed input field of a
// request at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidTypeError means a free-text transaction type could not be
// resolved against the select options configured in Notion.
type InvalidTypeError struct {
	Input   string
	Options []string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("%q is not a valid transaction type (available options: %s)",
		e.Input, strings.Join(e.Options, ", "))
}

// InvalidDatabaseError means a configured database ID actually refers to a
// single page. Database holds the human label, e.g. "Transactions".
type InvalidDatabaseError struct {
	Database string
}

func (e *InvalidDatabaseError) Error() string {
	return fmt.Sprintf("invalid %s database ID: the configured ID refers to a page, not a database", e.Database)
}

// NotFoundError means a database or relation target does not exist or is
// not shared with the integration.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found or not shared with the integration"
}

// isPageNotDatabase detects Notion's rejection of a page ID used where a
// database ID is expected. The API only signals this through the message
// text of a validation_error.
func isPageNotDatabase(err error) bool {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == "validation_error" && strings.Contains(apiErr.Message, "page, not a database")
}

func isObjectNotFound(err error) bool {
	var apiErr *notionapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == "object_not_found"
}

// translateNotionErr maps raw Notion errors from a database operation into
// the package taxonomy. Unrecognized errors pass through untouched.
func translateNotionErr(database string, err error) error {
	switch {
	case isPageNotDatabase(err):
		return &InvalidDatabaseError{Database: database}
	case isObjectNotFound(err):
		return &NotFoundError{Resource: database + " database"}
	}
	return err
}
