package todo

import (
	"fmt"
	"regexp"
	"time"

	domain "github.com/example/todo-api-demo/domain/todo"
)

// maxTitleLength is the maximum allowed title length in characters.
const maxTitleLength = 100

// dueDatePattern matches the literal YYYY-MM-DD layout. Parseability as a
// real calendar date is checked separately, so "2024-02-30" still fails.
var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCreate checks a creation request against the creation schema.
// It returns one FieldError per violated field; an empty result means the
// request is valid. No partial acceptance: any violation rejects the request.
func ValidateCreate(req CreateTodoRequest) []FieldError {
	var errs []FieldError

	if req.UserID == "" {
		errs = append(errs, FieldError{
			Field:   "userId",
			Message: "userId is required and must be a non-empty string",
		})
	}
	errs = append(errs, validateTitle(req.Title)...)
	if req.Completed == nil {
		errs = append(errs, FieldError{
			Field:   "completed",
			Message: "completed is required and must be a boolean",
		})
	}
	if req.DueDate != nil && !isValidDueDate(*req.DueDate) {
		errs = append(errs, dueDateError())
	}

	return errs
}

// ValidatePatch checks an update request against the update schema and
// builds the typed patch from exactly the fields present in the request.
// A request with none of the updatable fields yields an empty patch, which
// is valid: the handler still refreshes updatedAt.
func ValidatePatch(req UpdateTodoRequest) (domain.Patch, []FieldError) {
	var errs []FieldError

	if req.Title != nil {
		errs = append(errs, validateTitle(*req.Title)...)
	}
	if req.DueDate != nil && !isValidDueDate(*req.DueDate) {
		errs = append(errs, dueDateError())
	}
	if len(errs) > 0 {
		return domain.Patch{}, errs
	}

	return domain.Patch{
		Title:     req.Title,
		Completed: req.Completed,
		DueDate:   req.DueDate,
	}, nil
}

func validateTitle(title string) []FieldError {
	if title == "" {
		return []FieldError{{
			Field:   "title",
			Message: "title is required and must be a non-empty string",
		}}
	}
	if len([]rune(title)) > maxTitleLength {
		return []FieldError{{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength),
		}}
	}
	return nil
}

func isValidDueDate(s string) bool {
	if !dueDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func dueDateError() FieldError {
	return FieldError{
		Field:   "dueDate",
		Message: "Invalid date format. Use YYYY-MM-DD",
	}
}
