package reference

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"article-admin-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestContext(body *bytes.Buffer, contentType string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/article/1/references", body)
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        uploadSource
	}{
		{"application/json", encodedJSONSource{}},
		{"application/json; charset=utf-8", encodedJSONSource{}},
		{"multipart/form-data; boundary=abc", multipartSource{}},
		{"text/plain", multipartSource{}},
		{"", multipartSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			c := requestContext(&bytes.Buffer{}, tt.contentType)
			assert.IsType(t, tt.want, sourceFor(c))
		})
	}
}

func TestMultipartSource_Read(t *testing.T) {
	body, contentType := multipartBody(t, referenceField, "notes.txt", []byte("hello"))
	c := requestContext(body, contentType)

	file, problem, err := multipartSource{}.read(c, validation.New())
	require.NoError(t, err)
	assert.Nil(t, problem)
	assert.True(t, file.Present)
	assert.Equal(t, "notes.txt", file.Filename)
	assert.Equal(t, []byte("hello"), file.Data)
}

func TestMultipartSource_MissingFile(t *testing.T) {
	body, contentType := multipartBody(t, "other", "notes.txt", []byte("hello"))
	c := requestContext(body, contentType)

	file, problem, err := multipartSource{}.read(c, validation.New())
	require.NoError(t, err)
	assert.Nil(t, problem)
	assert.False(t, file.Present)
}

func TestMultipartSource_NotMultipart(t *testing.T) {
	c := requestContext(bytes.NewBufferString("plain"), "text/plain")

	file, problem, err := multipartSource{}.read(c, validation.New())
	require.NoError(t, err)
	assert.Nil(t, problem)
	assert.False(t, file.Present)
}

func TestMultipartSource_TooLarge(t *testing.T) {
	body, contentType := multipartBody(t, referenceField, "big.txt", bytes.Repeat([]byte("a"), 4096))
	c := requestContext(body, contentType)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)

	_, problem, err := multipartSource{}.read(c, validation.New())
	require.NoError(t, err)
	require.NotNil(t, problem)
	require.Len(t, problem.Violations, 1)
	assert.Equal(t, "too_large", problem.Violations[0].Code)
}

func TestEncodedJSONSource_Read(t *testing.T) {
	payload := `{"filename":"notes.txt","data":"` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"}`
	c := requestContext(bytes.NewBufferString(payload), "application/json")

	file, problem, err := encodedJSONSource{}.read(c, validation.New())
	require.NoError(t, err)
	assert.Nil(t, problem)
	assert.True(t, file.Present)
	assert.Equal(t, "notes.txt", file.Filename)
	assert.Equal(t, []byte("hello"), file.Data)
}

func TestEncodedJSONSource_Problems(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		detail   string
		property string
	}{
		{name: "malformed", body: `{"filename":`, detail: "Invalid body"},
		{name: "not an object", body: `[1,2]`, detail: "Invalid body"},
		{name: "missing data", body: `{"filename":"a.txt"}`, property: "data"},
		{name: "missing filename", body: `{"data":"aGVsbG8="}`, property: "filename"},
		{name: "filename too long", body: `{"filename":"` + strings.Repeat("a", 256) + `","data":"aGVsbG8="}`, property: "filename"},
		{name: "invalid base64", body: `{"filename":"a.txt","data":"%%%"}`, property: "data"},
		{name: "trailing data", body: `{"filename":"a.txt","data":"aGVsbG8="} not json`, detail: "Invalid body"},
		{name: "second object", body: `{"filename":"a.txt","data":"aGVsbG8="}{"filename":"b.txt","data":"aGVsbG8="}`, detail: "Invalid body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := requestContext(bytes.NewBufferString(tt.body), "application/json")

			_, problem, err := encodedJSONSource{}.read(c, validation.New())
			require.NoError(t, err)
			require.NotNil(t, problem)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, problem.Detail)
			}
			if tt.property != "" {
				require.Len(t, problem.Violations, 1)
				assert.Equal(t, tt.property, problem.Violations[0].PropertyPath)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var ids []uint
	require.NoError(t, decodeJSON(strings.NewReader("[3,1,2]\n"), &ids))
	assert.Equal(t, []uint{3, 1, 2}, ids)

	assert.ErrorIs(t, decodeJSON(strings.NewReader("[1] [2]"), &ids), errTrailingData)
	assert.ErrorIs(t, decodeJSON(strings.NewReader(`[1]}`), &ids), errTrailingData)
	assert.Error(t, decodeJSON(strings.NewReader(""), &ids))
}

func TestEncodedJSONSource_TooLarge(t *testing.T) {
	payload := `{"filename":"a.txt","data":"` + strings.Repeat("a", 4096) + `"}`
	c := requestContext(bytes.NewBufferString(payload), "application/json")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)

	_, problem, err := encodedJSONSource{}.read(c, validation.New())
	require.NoError(t, err)
	require.NotNil(t, problem)
	require.Len(t, problem.Violations, 1)
	assert.Equal(t, "too_large", problem.Violations[0].Code)
}
