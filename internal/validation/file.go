package validation

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxReferenceSize is the largest accepted reference file, 5 MB
	MaxReferenceSize = 5_000_000

	// DefaultMimeType is used when the content type can't be detected
	DefaultMimeType = "application/octet-stream"

	codeBlank        = "not_blank"
	codeEmpty        = "empty_file"
	codeTooLarge     = "too_large"
	codeTooLong      = "too_long"
	codeInvalidMime  = "invalid_mime_type"
	codeInvalidValue = "invalid_value"
)

// ReferenceMimeTypes is the allow-list of reference content types.
// An entry ending with "/*" accepts every subtype.
var ReferenceMimeTypes = []string{
	"image/*",
	"application/pdf",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
}

// FileConstraint describes what an uploaded file must satisfy
type FileConstraint struct {
	MaxSize   int64
	MimeTypes []string
}

// ReferenceConstraint is the constraint applied to article reference uploads
var ReferenceConstraint = FileConstraint{
	MaxSize:   MaxReferenceSize,
	MimeTypes: ReferenceMimeTypes,
}

// DetectMimeType sniffs data and returns its media type without parameters
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return ""
	}
	return mediaType
}

// File validates data against c. The detected media type is returned even when
// violations are found.
func (c FileConstraint) File(data []byte, present bool) (string, []Violation) {
	if !present {
		return "", []Violation{{
			PropertyPath: "reference",
			Title:        "Please select a file to upload",
			Code:         codeBlank,
		}}
	}
	if len(data) == 0 {
		return "", []Violation{{
			PropertyPath: "reference",
			Title:        "An empty file is not allowed.",
			Code:         codeEmpty,
		}}
	}

	var violations []Violation
	if c.MaxSize > 0 && int64(len(data)) > c.MaxSize {
		v := TooLarge("reference", c.MaxSize)
		v.Title = fmt.Sprintf("The file is too large (%d bytes). Allowed maximum size is %d bytes.", len(data), c.MaxSize)
		violations = append(violations, v)
	}

	mediaType := DetectMimeType(data)
	if len(c.MimeTypes) > 0 && !MimeTypeAllowed(mediaType, c.MimeTypes) {
		violations = append(violations, Violation{
			PropertyPath: "reference",
			Title: fmt.Sprintf("The mime type of the file is invalid (\"%s\"). Allowed mime types are \"%s\".",
				mediaType, strings.Join(c.MimeTypes, "\", \"")),
			Code: codeInvalidMime,
		})
	}

	return mediaType, violations
}

// MimeTypeAllowed reports whether mediaType matches one of allowed
func MimeTypeAllowed(mediaType string, allowed []string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(a)
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
			continue
		}
		if mediaType == a {
			return true
		}
	}
	return false
}

// InvalidValue is a single violation for a field that could not be interpreted
func InvalidValue(propertyPath, title string) Violation {
	return Violation{
		PropertyPath: propertyPath,
		Title:        title,
		Code:         codeInvalidValue,
	}
}

// TooLarge is the violation for a file exceeding maxSize bytes
func TooLarge(propertyPath string, maxSize int64) Violation {
	return Violation{
		PropertyPath: propertyPath,
		Title:        fmt.Sprintf("The file is too large. Allowed maximum size is %d bytes.", maxSize),
		Code:         codeTooLarge,
	}
}

// MaxLength returns a violation when value has more than max characters
func MaxLength(propertyPath, value string, max int) []Violation {
	if utf8.RuneCountInString(value) <= max {
		return nil
	}
	return []Violation{{
		PropertyPath: propertyPath,
		Title:        fmt.Sprintf("This value is too long. It should have %d characters or less.", max),
		Code:         codeTooLong,
	}}
}
