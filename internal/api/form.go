package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// AllowedUploadExtensions lists the document types the service extracts
// text from.
var AllowedUploadExtensions = []string{".txt", ".pdf", ".docx"}

// Upload is a document attached to a project form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProjectForm holds the fields of a new narration request. Empty optional
// fields are left out of the submitted payload.
type ProjectForm struct {
	Title    string
	VoiceID  string
	Language string
	Style    string
	Text     string
	File     *Upload
}

// AttachFile reads path from fs and attaches it as the form's document.
func (f *ProjectForm) AttachFile(fs afero.Fs, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !isAllowedExtension(ext) {
		return fmt.Errorf("unsupported document type %q: use %s", ext, strings.Join(AllowedUploadExtensions, ", "))
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	f.File = &Upload{
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}

	return nil
}

// Encode builds the multipart body and returns it with its content type.
func (f ProjectForm) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct {
		name, value string
	}{
		{"title", f.Title},
		{"voice_id", f.VoiceID},
		{"language", f.Language},
		{"style", f.Style},
		{"text", f.Text},
	}

	for _, field := range fields {
		// title is always sent, even empty, so the server can reject it
		if field.value == "" && field.name != "title" {
			continue
		}

		if err := mw.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field.name, err)
		}
	}

	if f.File != nil {
		if err := writeFilePart(mw, f.File); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

// Validate checks the form before it is sent.
func (f ProjectForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("title is required")
	}

	if f.VoiceID != "" {
		if _, err := strconv.ParseInt(f.VoiceID, 10, 64); err != nil {
			return fmt.Errorf("invalid voice id %q", f.VoiceID)
		}
	}

	return nil
}

func writeFilePart(mw *multipart.Writer, up *Upload) error {
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, up.Filename))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}

	if _, err := part.Write(up.Data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}

	return nil
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}
