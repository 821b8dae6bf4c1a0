package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"article-admin-backend/internal/model"
	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
)

// referenceField is the multipart form field carrying the file
const referenceField = "reference"

// uploadedFile is an upload after the transport encoding was removed
type uploadedFile struct {
	Data     []byte
	Filename string
	// Present is false when the request carried no file at all
	Present bool
}

// uploadSource reads the file out of one request encoding. A non nil
// problem is a client error, a non nil error an infrastructure failure.
type uploadSource interface {
	read(c *gin.Context, v *validation.Validator) (uploadedFile, *validation.Problem, error)
}

// multipartSource reads the "reference" part of a multipart/form-data body
type multipartSource struct{}

// encodedJSONSource reads a JSON body {"filename": ..., "data": <base64>}
type encodedJSONSource struct{}

// sourceFor picks the source by Content-Type. Everything that is not JSON is
// treated as a form upload.
func sourceFor(c *gin.Context) uploadSource {
	if c.ContentType() == gin.MIMEJSON {
		return encodedJSONSource{}
	}
	return multipartSource{}
}

func (multipartSource) read(c *gin.Context, _ *validation.Validator) (uploadedFile, *validation.Problem, error) {
	fh, err := c.FormFile(referenceField)
	if c.Request.MultipartForm != nil {
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()
	}

	switch {
	case isTooLarge(err):
		p := tooLargeProblem()
		return uploadedFile{}, &p, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return uploadedFile{}, nil, nil
	case err != nil:
		p := validation.InvalidBody()
		return uploadedFile{}, &p, nil
	}

	f, err := fh.Open()
	if err != nil {
		return uploadedFile{}, nil, fmt.Errorf("cannot open uploaded file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return uploadedFile{}, nil, fmt.Errorf("cannot read uploaded file: %w", err)
	}

	return uploadedFile{Data: data, Filename: fh.Filename, Present: true}, nil, nil
}

func (encodedJSONSource) read(c *gin.Context, v *validation.Validator) (uploadedFile, *validation.Problem, error) {
	var payload model.ArticleReferenceUploadAPIModel
	if err := decodeJSON(c.Request.Body, &payload); err != nil {
		p := validation.InvalidBody()
		if isTooLarge(err) {
			p = tooLargeProblem()
		}
		return uploadedFile{}, &p, nil
	}

	violations, err := v.Struct(payload)
	if err != nil {
		return uploadedFile{}, nil, err
	}
	if len(violations) > 0 {
		p := validation.NewProblem(violations)
		return uploadedFile{}, &p, nil
	}

	data, err := payload.DecodedData()
	if err != nil {
		p := validation.NewProblem([]validation.Violation{
			validation.InvalidValue("data", "This value is not valid base64 encoded data."),
		})
		return uploadedFile{}, &p, nil
	}

	return uploadedFile{Data: data, Filename: payload.Filename, Present: true}, nil, nil
}

// errTrailingData is returned when a JSON body holds more than one value
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSON decodes exactly one JSON value from r into v.
func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	err := dec.Decode(&struct{}{})
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case isTooLarge(err):
		return err
	}
	return errTrailingData
}

func isTooLarge(err error) bool {
	var maxBytesError *http.MaxBytesError
	return errors.As(err, &maxBytesError)
}

func tooLargeProblem() validation.Problem {
	return validation.NewProblem([]validation.Violation{
		validation.TooLarge(referenceField, validation.MaxReferenceSize),
	})
}
