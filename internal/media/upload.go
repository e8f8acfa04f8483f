package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("only image uploads are allowed")
	ErrMissingFile     = errors.New("no file provided")
)

// Recorder receives one observation per upload attempt.
type Recorder interface {
	RecordUpload(ctx context.Context, outcome string, bytes int64)
}

// Result is returned to the uploader.
type Result struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int    `json:"bytes"`
}

type Uploader struct {
	store    *FileStore
	maxBytes int64
	logger   *zap.SugaredLogger
	metrics  Recorder
}

func NewUploader(store *FileStore, maxBytes int64, logger *zap.SugaredLogger, metrics Recorder) *Uploader {
	return &Uploader{store: store, maxBytes: maxBytes, logger: logger, metrics: metrics}
}

func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload validates, processes and stores one image. contentType is the
// client's declared type; the sniffed type must agree that it is an image.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, contentType string) (*Result, error) {
	start := time.Now()
	res, size, err := u.upload(r, contentType)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrTooLarge):
		outcome = "too_large"
	case errors.Is(err, ErrUnsupportedType):
		outcome = "unsupported"
	case errors.Is(err, ErrMissingFile):
		outcome = "missing"
	case err != nil:
		outcome = "error"
	}
	if u.metrics != nil {
		u.metrics.RecordUpload(ctx, outcome, size)
	}
	if err != nil {
		u.logger.Warnw("Upload rejected", "outcome", outcome, "bytes", size, "error", err)
		return nil, err
	}
	u.logger.Infow("Upload stored", "url", res.URL, "bytes", res.Bytes, "width", res.Width, "height", res.Height, "duration", time.Since(start))
	return res, nil
}

func (u *Uploader) upload(r io.Reader, contentType string) (*Result, int64, error) {
	if r == nil {
		return nil, 0, ErrMissingFile
	}
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, 0, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, 0, fmt.Errorf("read upload: %w", err)
	}
	size := int64(len(data))
	if size == 0 {
		return nil, 0, ErrMissingFile
	}
	if size > u.maxBytes {
		return nil, size, ErrTooLarge
	}
	if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
		return nil, size, ErrUnsupportedType
	}

	processed, err := Process(bytes.NewReader(data))
	if err != nil {
		return nil, size, err
	}

	name := uuid.NewString() + processed.Ext
	url, err := u.store.Save(name, processed.Data)
	if err != nil {
		return nil, size, err
	}
	return &Result{
		URL:    url,
		Name:   name,
		Width:  processed.Width,
		Height: processed.Height,
		Bytes:  len(processed.Data),
	}, size, nil
}
