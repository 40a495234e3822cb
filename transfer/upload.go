package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/types"
)

// FileFormField is the multipart field holding the binary content.
const FileFormField = "file"

// UploadToStorage posts the template fields and the item content to template.TargetURL.
func UploadToStorage(ctx context.Context, client *http.Client, template *types.UploadTemplate, item types.TransferItem) error {
	if template == nil || template.TargetURL == "" {
		return fmt.Errorf("invalid parameters: template must carry a target url")
	}
	return postMultipart(ctx, client, template.TargetURL, "", templateFields(template.Fields), item)
}

// UploadDirect sends filename, mimetype and the content straight to url.
func UploadDirect(ctx context.Context, client *http.Client, url, csrfToken string, item types.TransferItem) error {
	if url == "" {
		return fmt.Errorf("invalid parameters: upload url must not be empty")
	}
	fields := [][2]string{
		{"filename", item.Name},
		{"mimetype", item.MimeType},
	}
	return postMultipart(ctx, client, url, csrfToken, fields, item)
}

// templateFields returns the pairs in key order so the request body is deterministic.
func templateFields(fields map[string]string) [][2]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, fields[k]})
	}
	return out
}

func postMultipart(ctx context.Context, client *http.Client, url, csrfToken string, fields [][2]string, item types.TransferItem) error {
	if item.Payload == nil {
		return fmt.Errorf("invalid parameters: item %s has no payload", item.Name)
	}
	body, contentType, err := buildMultipart(fields, item)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if csrfToken != "" {
		req.Header.Set(CSRFHeader, csrfToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send upload request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		return err
	}
	tool.DefaultLogger.Debugf("Upload of %s to %s accepted: %s", item.Name, url, resp.Status)
	return nil
}

// buildMultipart writes the fields first and the file part last, the order presigned POST policies require.
func buildMultipart(fields [][2]string, item types.TransferItem) (*bytes.Buffer, string, error) {
	content, err := item.Payload.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", item.Name, err)
	}
	defer content.Close()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", kv[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileFormField, escapeQuotes(item.Name)))
	mimeType := item.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", item.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
