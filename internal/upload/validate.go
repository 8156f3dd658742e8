package upload

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Validation bounds, checked once before any network call and never
// retried.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	MaxFileSize       = 10 << 20 // 10 MiB
)

// titleBlockedChars may not appear anywhere in a title.
const titleBlockedChars = `<>{}[]\^~`

// allowedExtensions is the upload allow-list.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ValidationError reports a precondition failure. It is surfaced
// immediately and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// SubmitRequest is one document submission.
type SubmitRequest struct {
	FileName    string
	Data        []byte
	Title       string
	Description string
}

// Validate checks all upload preconditions. Title and description are
// evaluated trimmed, matching how they are sent. Length bounds count
// characters, not bytes, so accented titles are not penalized.
func (r *SubmitRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		return &ValidationError{
			Field:   "documentTitle",
			Message: fmt.Sprintf("title must be between %d and %d characters", TitleMinLen, TitleMaxLen),
		}
	}
	if strings.ContainsAny(title, titleBlockedChars) {
		return &ValidationError{
			Field:   "documentTitle",
			Message: "title may not contain special characters",
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(r.Description)) > DescriptionMaxLen {
		return &ValidationError{
			Field:   "documentDescription",
			Message: fmt.Sprintf("description may not exceed %d characters", DescriptionMaxLen),
		}
	}

	if len(r.Data) == 0 {
		return &ValidationError{Field: "file", Message: "no file provided"}
	}
	if len(r.Data) > MaxFileSize {
		return &ValidationError{Field: "file", Message: "file exceeds the 10MB size limit"}
	}

	ext := strings.ToLower(filepath.Ext(r.FileName))
	if !allowedExtensions[ext] {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("file type %q is not allowed", ext)}
	}

	return nil
}
