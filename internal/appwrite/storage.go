package appwrite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// File is a stored bucket file.
type File struct {
	ID           string `json:"$id"`
	BucketID     string `json:"bucketId"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	SizeOriginal int64  `json:"sizeOriginal"`
	CreatedAt    string `json:"$createdAt"`
}

// FileList is the response of ListFiles.
type FileList struct {
	Total int    `json:"total"`
	Files []File `json:"files"`
}

// ListFiles lists the files in a bucket that session may read.
func (c *Client) ListFiles(ctx context.Context, session, bucketID string) (*FileList, error) {
	var list FileList
	path := "/storage/buckets/" + url.PathEscape(bucketID) + "/files"
	if err := c.doJSON(ctx, http.MethodGet, path, session, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateFile uploads data as a new file with the given id. Appwrite grants
// the session's user read, update and delete on the new file.
func (c *Client) CreateFile(ctx context.Context, session, bucketID, fileID, name, mimeType string, data io.Reader) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, fmt.Errorf("writing fileId field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("copying file data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var file File
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/storage/buckets/" + url.PathEscape(bucketID) + "/files",
		session:     session,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes a file from a bucket.
func (c *Client) DeleteFile(ctx context.Context, session, bucketID, fileID string) error {
	path := "/storage/buckets/" + url.PathEscape(bucketID) + "/files/" + url.PathEscape(fileID)
	return c.doJSON(ctx, http.MethodDelete, path, session, nil, nil)
}

// FileViewURL is the public retrieval URL of a file. It makes no network call.
func (c *Client) FileViewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s&mode=admin",
		c.endpoint, bucketID, fileID, c.projectID)
}

// Download fetches raw bytes from a URL served by this project (such as a
// FileViewURL) as session, sending the project headers.
func (c *Client) Download(ctx context.Context, session, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req, session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download body: %w", err)
	}
	return data, nil
}
