package wizard

import (
	"strings"
	"testing"
)

func TestAttachRejectsOversizeFile(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	data := make([]byte, 10*1024*1024+1)
	_, err := s.Attach(d, "", "license.pdf", "application/pdf", data)
	if err == nil {
		t.Fatal("expected size error")
	}
	if !strings.Contains(err.Error(), "file too large") {
		t.Errorf("error = %q, want size message", err.Error())
	}
	if len(d.Documents.List) != 0 {
		t.Error("draft should be untouched after rejected attach")
	}

	// Exactly at the limit is accepted.
	if _, err := s.Attach(d, "", "license.pdf", "application/pdf", data[:10*1024*1024]); err != nil {
		t.Fatalf("attach at limit failed: %v", err)
	}
	if len(d.Documents.List) != 1 {
		t.Errorf("attachments = %d, want 1", len(d.Documents.List))
	}
}

func TestAttachRejectsUnsupportedExtension(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	_, err := s.Attach(d, "", "malware.exe", "application/octet-stream", []byte("x"))
	if err == nil {
		t.Fatal("expected extension error")
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("error = %q, want unsupported type message", err.Error())
	}

	// Nurse uploads do not allow Word documents.
	dn := NewDraft("s2", RoleNurse)
	sn := SchemaFor(RoleNurse)
	if _, err := sn.Attach(dn, SlotNursingCertificate, "cert.docx", "", []byte("x")); err == nil {
		t.Error("nurse docx upload should be rejected")
	}
}

func TestNurseSizeLimit(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	data := make([]byte, 5*1024*1024+1)
	if _, err := s.Attach(d, SlotNursingCertificate, "cert.pdf", "application/pdf", data); err == nil {
		t.Error("expected size error above 5 MB")
	}
	if _, err := s.Attach(d, SlotNursingCertificate, "cert.pdf", "application/pdf", data[:5*1024*1024]); err != nil {
		t.Errorf("attach at nurse limit failed: %v", err)
	}
}

func TestSlotReplacesInsteadOfAppending(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	first, err := s.Attach(d, SlotNursingCertificate, "old.pdf", "application/pdf", []byte("old"))
	if err != nil {
		t.Fatalf("first attach failed: %v", err)
	}
	second, err := s.Attach(d, SlotNursingCertificate, "new.pdf", "application/pdf", []byte("new"))
	if err != nil {
		t.Fatalf("second attach failed: %v", err)
	}

	atts := d.Attachments(s)
	if len(atts) != 1 {
		t.Fatalf("attachments = %d, want 1", len(atts))
	}
	if atts[0].ID != second.ID || atts[0].Name != "new.pdf" {
		t.Errorf("slot holds %q, want the replacement", atts[0].Name)
	}
	if atts[0].ID == first.ID {
		t.Error("replacement should have a fresh ID")
	}
}

func TestAttachRejectsUnknownSlot(t *testing.T) {
	d := NewDraft("s1", RoleNurse)
	s := SchemaFor(RoleNurse)

	if _, err := s.Attach(d, "degreeCertificate", "cert.pdf", "application/pdf", []byte("x")); err == nil {
		t.Error("unknown slot should be rejected")
	}
}

func TestListModeIgnoresSlot(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	att, err := s.Attach(d, "someSlot", "license.pdf", "application/pdf", []byte("x"))
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if att.Slot != "" {
		t.Errorf("slot = %q, want empty for list-mode role", att.Slot)
	}
	if len(d.Documents.List) != 1 {
		t.Errorf("list length = %d, want 1", len(d.Documents.List))
	}
}

func TestDetach(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	a, _ := s.Attach(d, "", "one.pdf", "application/pdf", []byte("1"))
	b, _ := s.Attach(d, "", "two.pdf", "application/pdf", []byte("2"))

	if !d.Detach(a.ID) {
		t.Fatal("detach by ID failed")
	}
	if len(d.Documents.List) != 1 || d.Documents.List[0].ID != b.ID {
		t.Error("wrong attachment removed")
	}
	if d.Detach("missing-id") {
		t.Error("detach of unknown ID should report false")
	}

	// Slot-mode drafts can detach by slot name.
	dn := NewDraft("s2", RoleNurse)
	sn := SchemaFor(RoleNurse)
	sn.Attach(dn, SlotRegistrationCertificate, "cert.pdf", "application/pdf", []byte("x"))
	if !dn.Detach(SlotRegistrationCertificate) {
		t.Fatal("detach by slot name failed")
	}
	if len(dn.Attachments(sn)) != 0 {
		t.Error("slot should be empty after detach")
	}
}

func TestBase64PayloadIsFresh(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)
	s.Attach(d, "", "one.pdf", "application/pdf", []byte("hello"))

	first := d.Base64Payload(s)
	second := d.Base64Payload(s)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("payload lengths = %d, %d, want 1, 1", len(first), len(second))
	}
	first[0].Name = "mutated"
	if second[0].Name == "mutated" {
		t.Error("payload slices should be independent")
	}
	if second[0].Data == "" {
		t.Error("payload data should be base64 of the file")
	}
}

func TestAttachPreview(t *testing.T) {
	d := NewDraft("s1", RoleDoctor)
	s := SchemaFor(RoleDoctor)

	att, err := s.Attach(d, "", "scan.pdf", "", []byte("pdfbytes"))
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if !strings.HasPrefix(att.Preview, "data:application/pdf;base64,") {
		t.Errorf("preview = %q, want a pdf data URL", att.Preview)
	}
}
