package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"shareit/pkg/models"
)

// LinkFor builds the share link for a stored name on this client's server.
func (c *Client) LinkFor(name string) string {
	return c.baseURL + staticPrefix + url.PathEscape(name)
}

// resolve accepts either a full share link or a bare stored name.
func (c *Client) resolve(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return c.LinkFor(link)
}

// StoredName extracts the stored name from a share link.
func StoredName(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	return parsed.Path[strings.LastIndex(parsed.Path, "/")+1:]
}

// Get downloads a shared file into w and returns the number of bytes copied.
func (c *Client) Get(ctx context.Context, link string, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, c.resolve(link))
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read response: %w", err)
	}
	return n, nil
}

// Ping fetches the welcome line served on the root path.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) Status(ctx context.Context) (*models.NodeInfo, error) {
	var info models.NodeInfo
	if err := c.getJSON(ctx, c.baseURL+statusPath, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FileInfo fetches metadata for a share link or stored name.
func (c *Client) FileInfo(ctx context.Context, link string) (*models.FileInfo, error) {
	name := link
	if strings.Contains(link, "/") {
		name = StoredName(link)
	}

	var info models.FileInfo
	if err := c.getJSON(ctx, c.baseURL+fileInfoPath+url.PathEscape(name), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
