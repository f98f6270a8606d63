// Package media stores uploaded files, probes video durations and removes
// objects that are no longer referenced.
package media

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
)

// Kind is the object key prefix for a class of uploads.
type Kind string

const (
	KindAvatar     Kind = "avatars"
	KindCoverImage Kind = "covers"
	KindVideo      Kind = "videos"
	KindThumbnail  Kind = "thumbnails"
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".m4v": true, ".avi": true}
)

func (k Kind) accepts(ext string) bool {
	if k == KindVideo {
		return videoExtensions[ext]
	}
	return imageExtensions[ext]
}

// ObjectStore persists uploads and deletes them by location.
type ObjectStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// DurationProber measures the playback length of a local media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Uploader writes multipart files to an ObjectStore under <kind>/<uuid><ext>.
type Uploader struct {
	store   ObjectStore
	prober  DurationProber
	janitor *Janitor
	newID   func() string
}

// NewUploader wires an uploader. prober and janitor may be nil; durations then
// read as zero and Discard deletes synchronously.
func NewUploader(store ObjectStore, prober DurationProber, janitor *Janitor) *Uploader {
	return &Uploader{
		store:   store,
		prober:  prober,
		janitor: janitor,
		newID:   uuid.NewString,
	}
}

// Save stores an image upload and returns its public location.
func (u *Uploader) Save(ctx context.Context, kind Kind, file *multipart.FileHeader) (string, error) {
	ctx, span := logging.StartSpan(ctx, "media.save")
	defer span.End()

	key, err := u.key(kind, file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		span.Fail(err)
		return "", apperr.Internalf(err, "open upload")
	}
	defer src.Close()

	location, err := u.store.Save(ctx, key, src)
	if err != nil {
		span.Fail(err)
		return "", apperr.Internalf(err, "store %s", kind)
	}
	metrics.MediaUploadsTotal.WithLabelValues(string(kind)).Inc()
	return location, nil
}

// SaveVideo stores a video upload and returns its location and duration in
// seconds. A failed probe is logged and reported as a zero duration.
func (u *Uploader) SaveVideo(ctx context.Context, file *multipart.FileHeader) (string, float64, error) {
	ctx, span := logging.StartSpan(ctx, "media.save_video")
	defer span.End()

	key, err := u.key(KindVideo, file)
	if err != nil {
		return "", 0, err
	}

	src, err := file.Open()
	if err != nil {
		span.Fail(err)
		return "", 0, apperr.Internalf(err, "open upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "vidtube-*"+filepath.Ext(key))
	if err != nil {
		span.Fail(err)
		return "", 0, apperr.Internalf(err, "spool upload")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		span.Fail(err)
		return "", 0, apperr.Internalf(err, "spool upload")
	}

	duration := u.probe(ctx, tmp.Name())

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		span.Fail(err)
		return "", 0, apperr.Internalf(err, "rewind upload")
	}

	location, err := u.store.Save(ctx, key, tmp)
	if err != nil {
		span.Fail(err)
		return "", 0, apperr.Internalf(err, "store video")
	}
	metrics.MediaUploadsTotal.WithLabelValues(string(KindVideo)).Inc()
	return location, duration, nil
}

// Discard schedules removal of previously stored objects. Failures are logged.
func (u *Uploader) Discard(ctx context.Context, locations ...string) {
	logger := logging.FromContext(ctx)
	for _, location := range locations {
		if location == "" {
			continue
		}
		if u.janitor != nil {
			err := u.janitor.Enqueue(ctx, location)
			if err == nil {
				continue
			}
			logger.Warn("queue media deletion", slog.String("location", location), slog.String("error", err.Error()))
		}
		if err := u.store.Delete(context.WithoutCancel(ctx), location); err != nil {
			logger.Error("delete media object", slog.String("location", location), slog.String("error", err.Error()))
		}
	}
}

func (u *Uploader) key(kind Kind, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperr.Newf(apperr.InvalidArgument, "%s file is required", kind)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !kind.accepts(ext) {
		return "", apperr.Newf(apperr.InvalidArgument, "unsupported file type %q for %s", file.Filename, kind)
	}
	return string(kind) + "/" + u.newID() + ext, nil
}

func (u *Uploader) probe(ctx context.Context, path string) float64 {
	if u.prober == nil {
		return 0
	}
	seconds, err := u.prober.Duration(ctx, path)
	if err != nil {
		logging.FromContext(ctx).Warn("probe video duration", slog.String("error", err.Error()))
		return 0
	}
	return seconds
}
