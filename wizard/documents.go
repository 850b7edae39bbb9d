package wizard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Attachment is one uploaded document held in the draft until submission.
// Preview is a base64 data URL of the raw file; image uploads additionally
// get a resized thumbnail.
type Attachment struct {
	ID        string    `json:"id"`
	Slot      string    `json:"slot,omitempty"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Data      []byte    `json:"data"`
	Preview   string    `json:"preview"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// DocumentPayload is the {name, type, data} triple sent to persistence.
type DocumentPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
}

// Attach validates and stores an upload. For slot-mode roles a new attach to
// an occupied slot replaces the previous file; list-mode roles append.
// Violations are reported as errors, the draft is left untouched.
func (s *Schema) Attach(d *Draft, slot, filename, contentType string, data []byte) (*Attachment, error) {
	p := s.Documents
	if int64(len(data)) > p.MaxSize {
		return nil, &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file too large. Maximum size is %d bytes", p.MaxSize),
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !p.AllowedExts[ext] {
		return nil, &ValidationError{
			Field:   "file",
			Message: "unsupported file type. Allowed formats: " + allowedList(p.AllowedExts),
		}
	}
	if p.SlotMode() {
		if !p.ValidSlot(slot) {
			return nil, &ValidationError{Field: "slot", Message: "unknown document slot: " + slot}
		}
	} else {
		slot = ""
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	att := &Attachment{
		ID:      uuid.NewString(),
		Slot:    slot,
		Name:    filepath.Base(filename),
		Type:    contentType,
		Size:    int64(len(data)),
		Data:    data,
		Preview: dataURL(contentType, data),
		AddedAt: time.Now(),
	}
	if imageExts[ext] {
		if thumb, err := thumbnailDataURL(data); err == nil {
			att.Thumbnail = thumb
		}
	}

	if slot != "" {
		if d.Documents.Slots == nil {
			d.Documents.Slots = make(map[string]*Attachment)
		}
		d.Documents.Slots[slot] = att
	} else {
		d.Documents.List = append(d.Documents.List, att)
	}
	d.UpdatedAt = time.Now()
	return att, nil
}

// Detach removes an attachment by its ID, or by slot name for slot-mode
// drafts. Returns false when nothing matched.
func (d *Draft) Detach(idOrSlot string) bool {
	if att, ok := d.Documents.Slots[idOrSlot]; ok && att != nil {
		delete(d.Documents.Slots, idOrSlot)
		d.UpdatedAt = time.Now()
		return true
	}
	for slot, att := range d.Documents.Slots {
		if att != nil && att.ID == idOrSlot {
			delete(d.Documents.Slots, slot)
			d.UpdatedAt = time.Now()
			return true
		}
	}
	for i, att := range d.Documents.List {
		if att.ID == idOrSlot {
			d.Documents.List = append(d.Documents.List[:i], d.Documents.List[i+1:]...)
			d.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Attachments returns every stored attachment, slots first in policy order.
func (d *Draft) Attachments(s *Schema) []*Attachment {
	out := make([]*Attachment, 0, len(d.Documents.List)+len(d.Documents.Slots))
	for _, slot := range s.Documents.Slots {
		if att := d.Documents.Slots[slot]; att != nil {
			out = append(out, att)
		}
	}
	out = append(out, d.Documents.List...)
	return out
}

// Base64Payload maps every stored attachment into the {name, type, data}
// triple. It produces a fresh slice on each call.
func (d *Draft) Base64Payload(s *Schema) []DocumentPayload {
	atts := d.Attachments(s)
	out := make([]DocumentPayload, 0, len(atts))
	for _, att := range atts {
		out = append(out, DocumentPayload{
			Name: att.Name,
			Type: att.Type,
			Data: base64.StdEncoding.EncodeToString(att.Data),
		})
	}
	return out
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// thumbnailDataURL resizes an image upload to a 320px-wide JPEG preview.
func thumbnailDataURL(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

func allowedList(exts map[string]bool) string {
	names := make([]string, 0, len(exts))
	for _, ext := range []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx"} {
		if exts[ext] {
			names = append(names, strings.TrimPrefix(ext, "."))
		}
	}
	return strings.Join(names, ", ")
}
