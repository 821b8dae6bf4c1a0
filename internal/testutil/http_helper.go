// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// MakeJSONRequest is a helper function for making JSON requests in tests.
// body may be any value encoding/json accepts, or nil for an empty body.
func MakeJSONRequest(body any, authToken string, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	rec := MakeRawRequest(reader, "application/json", authToken, r, endpoint, method)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// MakeRawRequest sends body as is with the given content type
func MakeRawRequest(body io.Reader, contentType string, authToken string, r *gin.Engine, endpoint string, method string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, endpoint, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// MakeMultipartRequest posts data as the file part fieldName of a multipart form.
// An empty fieldName sends a form without any file part.
func MakeMultipartRequest(fieldName, filename string, data []byte, authToken string, r *gin.Engine, endpoint string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if fieldName != "" {
		part, _ := w.CreateFormFile(fieldName, filename)
		_, _ = part.Write(data)
	} else {
		_ = w.WriteField("note", "no file attached")
	}
	_ = w.Close()

	rec := MakeRawRequest(&buf, w.FormDataContentType(), authToken, r, endpoint, http.MethodPost)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// StringPtr is a helper function to get a pointer to a string
func StringPtr(s string) *string {
	return &s
}
