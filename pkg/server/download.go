package server

import (
	"errors"
	"net/http"

	"shareit/pkg/log"
	"shareit/pkg/models"
	"shareit/pkg/store"

	"github.com/labstack/echo/v4"
)

const msgFileNotFound = "File not found"

// lookupError maps store lookup errors to JSON responses. Invalid names are
// reported as missing so the namespace cannot be probed.
func lookupError(ctx echo.Context, name string, err error) error {
	var notFoundErr store.FileNotFoundError
	var invalidNameErr store.InvalidNameError
	if errors.As(err, &notFoundErr) || errors.As(err, &invalidNameErr) {
		log.Debug().Str("name", name).Msg("Stored file not found")
		return ctx.JSON(http.StatusNotFound, models.ErrorResponse{Error: msgFileNotFound})
	}

	log.Error().Err(err).Str("name", name).Msg("Failed to look up stored file")
	return ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}

func (srv *ShareServer) downloadFile(ctx echo.Context) error {
	name := storedName(ctx)
	log.Debug().Str("name", name).Msg("File download request")

	filePath, err := srv.store.Path(name)
	if err != nil {
		return lookupError(ctx, name, err)
	}

	ctx.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")
	return ctx.File(filePath)
}
