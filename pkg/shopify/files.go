package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

const filesQuery = `
query listFiles($first: Int!, $after: String) {
    files(first: $first, after: $after) {
        edges {
            node {
                id
                alt
                ... on GenericFile {
                    url
                }
                ... on MediaImage {
                    image {
                        url
                    }
                }
            }
        }
        pageInfo {
            hasNextPage
            endCursor
        }
    }
}
`

const stagedUploadsCreateMutation = `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
    stagedUploadsCreate(input: $input) {
        stagedTargets {
            url
            resourceUrl
            parameters {
                name
                value
            }
        }
        userErrors {
            field
            message
        }
    }
}
`

const fileCreateMutation = `
mutation fileCreate($files: [FileCreateInput!]!) {
    fileCreate(files: $files) {
        files {
            id
            alt
        }
        userErrors {
            field
            message
        }
    }
}
`

const fileDeleteMutation = `
mutation fileDelete($fileIds: [ID!]!) {
    fileDelete(fileIds: $fileIds) {
        deletedFileIds
        userErrors {
            field
            message
        }
    }
}
`

// ListFiles walks the files connection to exhaustion.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	var collected []File
	var after *string
	for {
		var out struct {
			Files struct {
				Edges []struct {
					Node struct {
						ID    string `json:"id"`
						Alt   string `json:"alt"`
						URL   string `json:"url"`
						Image struct {
							URL string `json:"url"`
						} `json:"image"`
					} `json:"node"`
				} `json:"edges"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"files"`
		}
		vars := map[string]any{"first": 250}
		if after != nil {
			vars["after"] = *after
		}
		if err := c.Execute(ctx, filesQuery, vars, &out); err != nil {
			return nil, err
		}
		for _, edge := range out.Files.Edges {
			url := edge.Node.URL
			if url == "" {
				url = edge.Node.Image.URL
			}
			collected = append(collected, File{
				GID:      edge.Node.ID,
				Alt:      edge.Node.Alt,
				URL:      url,
				Filename: filenameFromURL(url),
			})
		}
		if !out.Files.PageInfo.HasNextPage {
			return collected, nil
		}
		cursor := out.Files.PageInfo.EndCursor
		after = &cursor
	}
}

// CreateStagedUpload requests an upload target for one file.
func (c *Client) CreateStagedUpload(ctx context.Context, filename, mimeType string) (*StagedUploadTarget, error) {
	var out struct {
		StagedUploadsCreate struct {
			StagedTargets []struct {
				URL         string `json:"url"`
				ResourceURL string `json:"resourceUrl"`
				Parameters  []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"parameters"`
			} `json:"stagedTargets"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	err := c.Execute(ctx, stagedUploadsCreateMutation, map[string]any{
		"input": []map[string]any{{
			"resource":   "FILE",
			"filename":   filename,
			"mimeType":   mimeType,
			"httpMethod": "POST",
		}},
	}, &out)
	if err != nil {
		return nil, err
	}
	if errs := out.StagedUploadsCreate.UserErrors; len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("staged upload rejected: %s", joinUserErrors(errs)))
	}
	if len(out.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "staged upload returned no targets")
	}

	raw := out.StagedUploadsCreate.StagedTargets[0]
	target := &StagedUploadTarget{
		URL:         raw.URL,
		ResourceURL: raw.ResourceURL,
		Parameters:  make(map[string]string, len(raw.Parameters)),
	}
	for _, p := range raw.Parameters {
		target.Parameters[p.Name] = p.Value
	}
	return target, nil
}

// UploadToStagedTarget POSTs the file bytes to the staged target as a
// multipart form, parameters first, file field last.
func (c *Client) UploadToStagedTarget(ctx context.Context, target *StagedUploadTarget, filename string, content []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range target.Parameters {
		if err := writer.WriteField(name, value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing staged upload field")
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating staged upload part")
	}
	if _, err := part.Write(content); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing staged upload bytes")
	}
	if err := writer.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing staged upload body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building staged upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading to staged target")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("staged upload returned %d: %s", resp.StatusCode, string(respBody)))
	}
	return nil
}

// CreateFileFromStaged confirms the staged bytes as a file resource.
func (c *Client) CreateFileFromStaged(ctx context.Context, resourceURL, altText string) (string, error) {
	var out struct {
		FileCreate struct {
			Files []struct {
				ID string `json:"id"`
			} `json:"files"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileCreate"`
	}
	err := c.Execute(ctx, fileCreateMutation, map[string]any{
		"files": []map[string]any{{
			"alt":            altText,
			"contentType":    "FILE",
			"originalSource": resourceURL,
		}},
	}, &out)
	if err != nil {
		return "", err
	}
	if errs := out.FileCreate.UserErrors; len(errs) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file create rejected: %s", joinUserErrors(errs)))
	}
	if len(out.FileCreate.Files) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "file create returned no files")
	}
	return out.FileCreate.Files[0].ID, nil
}

// DeleteFiles removes file resources by global ID.
func (c *Client) DeleteFiles(ctx context.Context, fileGIDs []string) error {
	var out struct {
		FileDelete struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileDelete"`
	}
	if err := c.Execute(ctx, fileDeleteMutation, map[string]any{"fileIds": fileGIDs}, &out); err != nil {
		return err
	}
	if errs := out.FileDelete.UserErrors; len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file delete rejected: %s", joinUserErrors(errs)))
	}
	return nil
}

func filenameFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	trimmed := rawURL
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
