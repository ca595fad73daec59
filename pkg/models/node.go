package models

// NodeInfo represents the running server and its storage filesystem.
type NodeInfo struct {
	Version       string      `json:"version"`
	Uptime        string      `json:"uptime"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Storage       StorageInfo `json:"storage"`
}

// StorageInfo represents disk usage information for the storage directory.
type StorageInfo struct {
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Available uint64 `json:"available"`
}
