package appwrite

import "fmt"

// ViewURL returns the inline view URL for a file.
func (c *Client) ViewURL(fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		c.endpoint, c.bucketID, fileID, c.projectID)
}

// PreviewURL returns the resized preview URL for an image file. Zero-valued
// dimensions or quality are omitted.
func (c *Client) PreviewURL(fileID string, width, height, quality int) string {
	url := fmt.Sprintf("%s/storage/buckets/%s/files/%s/preview?project=%s",
		c.endpoint, c.bucketID, fileID, c.projectID)

	if width > 0 {
		url += fmt.Sprintf("&width=%d", width)
	}
	if height > 0 {
		url += fmt.Sprintf("&height=%d", height)
	}
	if quality > 0 {
		url += fmt.Sprintf("&quality=%d", quality)
	}
	return url
}

// DownloadURL returns the attachment download URL for a file.
func (c *Client) DownloadURL(fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/download?project=%s",
		c.endpoint, c.bucketID, fileID, c.projectID)
}
