package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/types"
)

// CSRFHeader carries the token supplied by the calling environment.
const CSRFHeader = "CSRF-token"

// Initiate asks the server for an upload template for one item (first step of the presign protocol).
func Initiate(ctx context.Context, client *http.Client, url, csrfToken string, item types.TransferItem) (*types.UploadTemplate, error) {
	if url == "" {
		return nil, fmt.Errorf("invalid parameters: initiate url must not be empty")
	}
	payload, err := sonic.Marshal(types.InitiateRequest{
		ID:       item.ID,
		FileName: item.Name,
		MimeType: item.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initiate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create initiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if csrfToken != "" {
		req.Header.Set(CSRFHeader, csrfToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send initiate request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read initiate response: %w", err)
	}
	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		return nil, err
	}
	tool.DefaultLogger.Debugf("Initiate response for %s: %s", item.Name, string(body))
	return ParseTemplate(body)
}

// ParseTemplate decodes {fields, href}. The body may also be that object encoded as a JSON string.
func ParseTemplate(body []byte) (*types.UploadTemplate, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &types.MalformedResponse{What: "upload template", Err: errors.New("empty body")}
	}
	if body[0] == '"' {
		var inner string
		if err := sonic.Unmarshal(body, &inner); err != nil {
			return nil, &types.MalformedResponse{What: "upload template", Err: err}
		}
		body = bytes.TrimSpace([]byte(inner))
	}
	var template types.UploadTemplate
	if err := sonic.Unmarshal(body, &template); err != nil {
		return nil, &types.MalformedResponse{What: "upload template", Err: err}
	}
	if template.TargetURL == "" {
		return nil, &types.MalformedResponse{What: "upload template", Err: errors.New("missing href")}
	}
	if template.Fields == nil {
		template.Fields = map[string]string{}
	}
	return &template, nil
}
