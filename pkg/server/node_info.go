package server

import (
	"net/http"
	"strconv"
	"time"

	"shareit/pkg/log"
	"shareit/pkg/models"

	"github.com/labstack/echo/v4"
)

// getNodeInfo handles GET /api/status.
func (srv *ShareServer) getNodeInfo(ctx echo.Context) error {
	usage, err := srv.store.GetDiskUsage()
	if err != nil {
		log.Error().Err(err).Msg("Failed to collect storage information")
		return ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to collect node information",
		})
	}

	uptime := int64(time.Since(srv.startedAt).Seconds())
	return ctx.JSON(http.StatusOK, models.NodeInfo{
		Version:       srv.version,
		Uptime:        formatUptime(uptime),
		UptimeSeconds: uptime,
		Storage: models.StorageInfo{
			Total:     nonNegative(usage.TotalSpace),
			Used:      nonNegative(usage.SpaceUsed),
			Available: nonNegative(usage.SpaceAvailable),
		},
	})
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// formatUptime converts seconds into a compact "1d 2h 3m" form.
func formatUptime(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	const hoursInDay = 24
	const minutesInHour = 60
	days := int(duration.Hours()) / hoursInDay
	hours := int(duration.Hours()) % hoursInDay
	minutes := int(duration.Minutes()) % minutesInHour

	switch {
	case days > 0:
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case hours > 0:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	default:
		return strconv.Itoa(minutes) + "m"
	}
}
