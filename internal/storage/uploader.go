package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/model"

	"github.com/google/uuid"
)

const maxKeyNameLength = 100

// Uploader stores article reference files under model.ArticleReferencePrefix
// and signs download links to them.
type Uploader struct {
	client   Client
	prefix   string
	observer Observer
	log      logging.Logger
}

// NewUploader wraps client. A nil observer disables metrics.
func NewUploader(client Client, observer Observer, log logging.Logger) *Uploader {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Uploader{
		client:   client,
		prefix:   model.ArticleReferencePrefix,
		observer: observer,
		log:      log,
	}
}

// PathFor returns the object key of a stored reference filename
func (u *Uploader) PathFor(filename string) string {
	return path.Join(u.prefix, filename)
}

// UploadArticleReference stores data under a freshly generated unique
// filename derived from name and returns that filename.
func (u *Uploader) UploadArticleReference(ctx context.Context, data []byte, name, contentType string) (string, error) {
	filename := GenerateFilename(name)

	start := time.Now()
	err := u.client.UploadFile(ctx, u.PathFor(filename), bytes.NewReader(data), contentType)
	u.observer.RecordUpload(time.Since(start), int64(len(data)), err)
	if err != nil {
		u.log.Error(ctx, "reference upload failed", "key", u.PathFor(filename), "error", err)
		return "", err
	}

	u.log.Debug(ctx, "reference uploaded", "key", u.PathFor(filename), "size", len(data))
	return filename, nil
}

// DeleteFile removes the object stored at key
func (u *Uploader) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	err := u.client.DeleteFile(ctx, key)
	u.observer.RecordDelete(time.Since(start), err)
	return err
}

// SignedDownloadURL returns a link valid for ttl that serves ref as an
// attachment named after its original filename.
func (u *Uploader) SignedDownloadURL(ctx context.Context, ref model.ArticleReference, ttl time.Duration) (string, error) {
	start := time.Now()
	link, err := u.client.PresignGet(ctx, ref.FilePath(), GetOptions{
		TTL:                        ttl,
		ResponseContentType:        ref.MimeType,
		ResponseContentDisposition: ContentDisposition(ref.OriginalFilename),
	})
	u.observer.RecordPresign(time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}
	return link, nil
}

// ContentDisposition builds an attachment header value for filename.
// Non ASCII names are encoded as RFC 2231 filename*.
func ContentDisposition(filename string) string {
	if filename == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// GenerateFilename returns "<uuid>-<sanitized name>", or only the uuid when
// nothing of name survives sanitizing.
func GenerateFilename(name string) string {
	id := uuid.NewString()
	clean := SanitizeName(name)
	if clean == "" {
		return id
	}
	return id + "-" + clean
}

// SanitizeName keeps the base name with letters, digits, dots, dashes and
// underscores, replacing runs of anything else with a single dash.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}

	clean := strings.Trim(b.String(), "-.")
	if len(clean) > maxKeyNameLength {
		clean = strings.TrimRight(clean[len(clean)-maxKeyNameLength:], "-.")
		clean = strings.TrimLeft(clean, "-.")
	}
	return clean
}
