package domain

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Allowed document MIME types
const (
	MIMEPDF      = "application/pdf"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEWord     = "application/msword"
	MIMEWordX    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedMIMETypes lists every type a node accepts, in display order
var AllowedMIMETypes = []string{MIMEPDF, MIMEText, MIMEMarkdown, MIMEWord, MIMEWordX}

// Document is a file attached to a node
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MIMEType   string    `json:"type"`
	Size       int64     `json:"size"`
	Content    string    `json:"content"`
	AttachedAt time.Time `json:"attached_at"`

	// Batch and Seq place the document within the attach call it came from
	Batch string `json:"-"`
	Seq   int    `json:"-"`
}

// Rejection is the per-file notice for a file that was not attached
type Rejection struct {
	Name     string `json:"name"`
	MIMEType string `json:"type"`
	Message  string `json:"message"`
}

// NormalizeMIMEType lower-cases a media type and strips its parameters
func NormalizeMIMEType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(t)
}

// IsAllowedMIMEType reports whether documents of type t may be attached
func IsAllowedMIMEType(t string) bool {
	t = NormalizeMIMEType(t)
	for _, allowed := range AllowedMIMETypes {
		if t == allowed {
			return true
		}
	}
	return false
}

// IsTextLike reports whether documents of type t are kept as decoded text
func IsTextLike(t string) bool {
	switch NormalizeMIMEType(t) {
	case MIMEText, MIMEMarkdown:
		return true
	}
	return false
}

// Reject builds the user-facing notice for an unsupported file
func Reject(name, mimeType string) Rejection {
	return Rejection{
		Name:     name,
		MIMEType: mimeType,
		Message:  fmt.Sprintf("File type %s is not supported. Please upload PDF, TXT, MD, or DOC files.", mimeType),
	}
}

// NewDocument encodes raw file bytes for storage. Text types are decoded to a
// string; other types become a data URL. Callers validate the type first.
func NewDocument(name, mimeType string, data []byte) Document {
	mt := NormalizeMIMEType(mimeType)
	return Document{
		ID:         uuid.NewString(),
		Name:       name,
		MIMEType:   mt,
		Size:       int64(len(data)),
		Content:    encodeContent(mt, data),
		AttachedAt: time.Now(),
	}
}

func encodeContent(mimeType string, data []byte) string {
	if IsTextLike(mimeType) {
		if utf8.Valid(data) {
			return string(data)
		}
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsText reports whether the document holds decoded text
func (d Document) IsText() bool {
	return IsTextLike(d.MIMEType)
}

// DocumentView is what opening a document yields
type DocumentView struct {
	ContentType string
	Body        []byte
}

// Open returns the viewable form of the document. Text documents come back
// as their text; binary documents as the decoded data URL payload.
func (d Document) Open() (DocumentView, error) {
	if d.IsText() {
		return DocumentView{
			ContentType: d.MIMEType + "; charset=utf-8",
			Body:        []byte(d.Content),
		}, nil
	}

	contentType, body, err := decodeDataURL(d.Content)
	if err != nil {
		return DocumentView{}, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if contentType == "" {
		contentType = d.MIMEType
	}
	return DocumentView{ContentType: contentType, Body: body}, nil
}

func decodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("content is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mediaType, []byte(payload), nil
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return mediaType, body, nil
}
