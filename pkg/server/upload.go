package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"shareit/pkg/log"
	"shareit/pkg/models"
	"shareit/pkg/store"

	"github.com/labstack/echo/v4"
)

const (
	// FileField is the multipart field carrying the upload.
	FileField = "file"

	msgNoFile           = "No file uploaded"
	msgFileTooLarge     = "File too large"
	msgUploadIncomplete = "Upload incomplete"
	msgStoreFailed      = "Failed to store file"
)

var errNoFilePart = errors.New("no file part in request")

// trackingReader remembers the first error returned by the request body so a
// failed Save can be blamed on the client or on the disk.
type trackingReader struct {
	reader io.Reader
	err    error
}

func (r *trackingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && r.err == nil {
		r.err = err
	}
	return n, err
}

func (srv *ShareServer) uploadFile(ctx echo.Context) error {
	log.Info().Msg("File upload request received")

	reader, err := ctx.Request().MultipartReader()
	if err != nil {
		log.Warn().Err(err).Msg("Upload request is not multipart")
		return ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgNoFile})
	}

	part, err := nextFilePart(reader)
	if err != nil {
		if isBodyTooLarge(err) {
			return ctx.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: msgFileTooLarge})
		}
		log.Warn().Err(err).Msg("File parameter is required")
		return ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgNoFile})
	}
	defer func() {
		if err := part.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close file part")
		}
	}()

	body := &trackingReader{reader: part}
	info, err := srv.store.Save(body, part.FileName())
	if err != nil {
		return srv.handleUploadError(ctx, err, body.err)
	}

	link := srv.shareLink(ctx, info.Name)
	log.Info().
		Str("name", info.Name).
		Str("original_name", part.FileName()).
		Int64("size", info.Size).
		Str("url", link).
		Msg("File uploaded successfully")

	return ctx.JSON(http.StatusOK, models.UploadResponse{URL: link})
}

// nextFilePart advances to the first part of the file field that carries a
// file name, skipping every other field.
func nextFilePart(reader *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFilePart
		}
		if err != nil {
			return nil, err
		}

		if part.FormName() == FileField && part.FileName() != "" {
			return part, nil
		}
		if err := part.Close(); err != nil {
			return nil, err
		}
	}
}

func isBodyTooLarge(err error) bool {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// handleUploadError maps store and body errors to JSON responses.
func (srv *ShareServer) handleUploadError(ctx echo.Context, err, readErr error) error {
	var tooLargeErr store.FileTooLargeError
	if errors.As(err, &tooLargeErr) || (readErr != nil && isBodyTooLarge(readErr)) {
		log.Warn().Err(err).Msg("Upload rejected as too large")
		return ctx.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: msgFileTooLarge})
	}
	if readErr != nil {
		log.Warn().Err(readErr).Msg("Upload body ended early")
		return ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgUploadIncomplete})
	}

	log.Error().Err(err).Msg("Failed to store file")
	return ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgStoreFailed})
}
