package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const fileSprayService = "FileSpray"

// SprayVariable submits one JSON spray. It is never retried. A response
// without a SprayResponse block yields an empty WUID.
func (c *Client) SprayVariable(ctx context.Context, req SprayRequest) (*SprayResponse, error) {
	var resp SprayResponse
	err := c.call(ctx, c.submitClient, fileSprayService, "SprayVariable", "SprayResponse", req, &resp)
	if err != nil && !errors.Is(err, errMissingPayload) {
		return nil, err
	}
	return &resp, nil
}

// GetDFUWorkunit fetches the status of a DFU workunit.
func (c *Client) GetDFUWorkunit(ctx context.Context, wuid string) (*DFUWorkunit, error) {
	wuid = strings.TrimSpace(wuid)
	if wuid == "" {
		return nil, fmt.Errorf("wuid is required")
	}
	var resp getDFUWorkunitResponse
	req := map[string]string{"wuid": wuid}
	if err := c.call(ctx, c.lookupClient, fileSprayService, "GetDFUWorkunit", "GetDFUWorkunitResponse", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// DropZoneFiles lists the landing zones and the root of the requested one.
// An empty netAddress lists the first zone the server reports.
func (c *Client) DropZoneFiles(ctx context.Context, netAddress, path string) (*DropZoneListing, error) {
	req := map[string]any{
		"NetAddress":    netAddress,
		"Path":          path,
		"DirectoryOnly": false,
	}
	var resp dropZoneFilesResponse
	if err := c.call(ctx, c.lookupClient, fileSprayService, "DropZoneFiles", "DropZoneFilesResponse", req, &resp); err != nil {
		return nil, err
	}
	return &DropZoneListing{
		DropZones: resp.DropZones.DropZone,
		Files:     resp.Files.PhysicalFileStruct,
	}, nil
}

// FileList lists one directory inside a landing zone.
func (c *Client) FileList(ctx context.Context, zone DropZone, path, mask string) ([]PhysicalFile, error) {
	osType := 2
	if zone.PathSeparator() == "\\" {
		osType = 0
	}
	req := map[string]any{
		"Netaddr":       zone.NetAddress,
		"Path":          path,
		"Mask":          mask,
		"OS":            osType,
		"DirectoryOnly": false,
	}
	var resp fileListResponse
	if err := c.call(ctx, c.lookupClient, fileSprayService, "FileList", "FileListResponse", req, &resp); err != nil {
		return nil, err
	}
	return resp.Files.PhysicalFileStruct, nil
}
