package server

import (
	"net/http"

	"shareit/pkg/log"
	"shareit/pkg/models"

	"github.com/labstack/echo/v4"
)

func (srv *ShareServer) getFileInfo(ctx echo.Context) error {
	name := storedName(ctx)
	log.Info().Str("name", name).Msg("File info request")

	info, err := srv.store.GetFileInfo(name)
	if err != nil {
		return lookupError(ctx, name, err)
	}

	return ctx.JSON(http.StatusOK, models.FileInfo{
		Name:         info.Name,
		OriginalName: info.OriginalName,
		Size:         info.Size,
		CreatedAt:    info.CreatedAt.UTC(),
		URL:          srv.shareLink(ctx, info.Name),
	})
}
