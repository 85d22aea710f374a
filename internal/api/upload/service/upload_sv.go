package uploadService

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"DocuCapture/internal/api/upload"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/response"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonErrorBody struct {
	Message     string `json:"message"`
	Error       string `json:"error"`
	RedirectURL string `json:"redirect_url"`
}

type xmlErrorBody struct {
	XMLName     xml.Name `xml:"Error"`
	Code        string   `xml:"Code"`
	Message     string   `xml:"Message"`
	RedirectURL string   `xml:"RedirectUrl"`
}

// UploadDocument pushes one captured document side to its destination and
// returns the stored location. With a presigned target it posts a multipart
// form; without one it falls back to direct S3 upload when configured.
func (s *uploadService) UploadDocument(ctx context.Context, side entity.DocumentSide, filePath string, target *upload.Target) (string, error) {
	if err := s.utils.ValidateImageFile(filePath); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrInvalidFile, err)
	}

	if target == nil {
		return s.uploadDirect(side, filePath)
	}

	if err := s.validator.Struct(target); err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrInvalidTarget, err)
	}

	return target.URL, s.uploadPresigned(ctx, side, filePath, target)
}

func (s *uploadService) uploadPresigned(ctx context.Context, side entity.DocumentSide, filePath string, target *upload.Target) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", upload.ErrInvalidFile, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.Warnf("Failed to close capture file: %v", err)
		}
	}()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range target.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	s.log.WithFields(map[string]interface{}{
		"side": side.String(),
		"url":  target.URL,
	}).Debug("Uploading document capture")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return response.NewError(0, fmt.Sprintf("upload request failed: %v", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	message, redirect := parseErrorBody(raw)
	if message == "" {
		message = fmt.Sprintf("upload rejected with status %d", resp.StatusCode)
	}

	return response.NewErrorWithRedirect(resp.StatusCode, message, redirect)
}

func (s *uploadService) uploadDirect(side entity.DocumentSide, filePath string) (string, error) {
	if s.s3Client == nil {
		return "", upload.ErrNoDestination
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", upload.ErrInvalidFile, err)
	}

	name := fmt.Sprintf("document-%s-%s", side.String(), filepath.Base(filePath))
	location, err := s.s3Client.UploadBytes(name, data, "image/png")
	if err != nil {
		return "", response.NewError(0, fmt.Sprintf("direct upload failed: %v", err))
	}

	// captures are stored private; hand back a time-limited retrieval URL
	presigned, err := s.s3Client.PresignUrl(location)
	if err != nil {
		s.log.Warnf("Presigning uploaded capture failed: %v", err)
		return location, nil
	}

	return presigned, nil
}

// parseErrorBody pulls a human-readable message and optional redirect URL
// from a JSON or XML error payload.
func parseErrorBody(raw []byte) (message, redirect string) {
	var jsonBody jsonErrorBody
	if err := json.Unmarshal(raw, &jsonBody); err == nil {
		if jsonBody.Message != "" {
			return jsonBody.Message, jsonBody.RedirectURL
		}
		if jsonBody.Error != "" {
			return jsonBody.Error, jsonBody.RedirectURL
		}
	}

	var xmlBody xmlErrorBody
	if err := xml.Unmarshal(raw, &xmlBody); err == nil && xmlBody.Message != "" {
		return xmlBody.Message, xmlBody.RedirectURL
	}

	return "", ""
}
