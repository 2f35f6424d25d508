package notification

import (
	"bytes"
	"strings"
	"testing"

	"noticeboard/internal/domain/announcement"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-png-payload")

// TestCompose_Created_NoImage tests the created template without an image.
func TestCompose_Created_NoImage(t *testing.T) {
	msg, err := Compose(Request{Operation: announcement.OperationCreated, Title: "T", Body: "B\nC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "NEW ANNOUNCEMENT: T" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "B<br>") {
		t.Errorf("expected newline rendered as <br>, got %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "cid:") {
		t.Error("expected no inline image reference")
	}
	if len(msg.Attachments) != 0 {
		t.Errorf("expected no attachments, got %d", len(msg.Attachments))
	}
}

// TestCompose_Updated_WithImage tests inline image embedding on update.
func TestCompose_Updated_WithImage(t *testing.T) {
	msg, err := Compose(Request{
		Operation: announcement.OperationUpdated,
		Title:     "Schedule",
		Body:      "Moved to Friday",
		Image:     &Image{Name: "IMAGE-abc.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "UPDATED ANNOUNCEMENT: Schedule" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Announcement Updated:") {
		t.Error("expected updated framing text")
	}
	if !strings.Contains(msg.HTML, `src="cid:`+ImageContentID+`"`) {
		t.Errorf("expected cid image reference, got %s", msg.HTML)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.ContentID != ImageContentID || att.Filename != "IMAGE-abc.png" || att.ContentType != "image/png" {
		t.Errorf("unexpected attachment %+v", att)
	}
	if !bytes.Equal(att.Data, pngBytes) {
		t.Error("expected attachment bytes to match image")
	}
}

// TestCompose_Deleted_ReducedEmphasis tests the cancelled framing and dimmed image.
func TestCompose_Deleted_ReducedEmphasis(t *testing.T) {
	msg, err := Compose(Request{
		Operation: announcement.OperationDeleted,
		Title:     "Party",
		Body:      "Cancelled",
		Image:     &Image{Name: "IMAGE-x.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "CANCELLED ANNOUNCEMENT: Party" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Announcement Removed/Cancelled") {
		t.Error("expected cancelled framing text")
	}
	if !strings.Contains(msg.HTML, "opacity: 0.6") {
		t.Error("expected reduced-emphasis image")
	}
}

// TestCompose_EscapesTitleAndBody tests that markup in user content is not rendered.
func TestCompose_EscapesTitleAndBody(t *testing.T) {
	msg, err := Compose(Request{
		Operation: announcement.OperationCreated,
		Title:     "<script>alert(1)</script>",
		Body:      "<img src=x onerror=alert(1)>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("expected title to be escaped")
	}
	if strings.Contains(msg.HTML, "<img src=x") {
		t.Error("expected body markup not to be rendered")
	}
	if !strings.Contains(msg.HTML, "&lt;img src=x onerror=alert(1)&gt;") {
		t.Errorf("expected body text kept and escaped, got %s", msg.HTML)
	}
}

// TestRenderBody_PlainText tests that bodies are shown as typed, one <br> per newline.
func TestRenderBody_PlainText(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"rule under line", "Agenda\n---\nBring laptop", "Agenda<br>---<br>Bring laptop"},
		{"angle brackets", "Dress code: <formal>\nSee you", "Dress code: &lt;formal&gt;<br>See you"},
		{"numbered lines", "Team\n1. lunch\n2. talk", "Team<br>1. lunch<br>2. talk"},
		{"blank line", "a\n\nb", "a<br><br>b"},
		{"windows newlines", "a\r\nb\rc", "a<br>b<br>c"},
		{"heading marker", "# not a heading", "# not a heading"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(RenderBody(tc.body)); got != tc.want {
				t.Errorf("RenderBody(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

// TestCompose_Deterministic tests that identical requests render identically.
func TestCompose_Deterministic(t *testing.T) {
	req := Request{Operation: announcement.OperationCreated, Title: "T", Body: "one\ntwo"}
	a, _ := Compose(req)
	b, _ := Compose(req)
	if a.HTML != b.HTML || a.Subject != b.Subject {
		t.Error("expected deterministic output")
	}
}

// TestCompose_InvalidOperation tests that unknown kinds are rejected.
func TestCompose_InvalidOperation(t *testing.T) {
	if _, err := Compose(Request{Operation: "archived", Title: "T"}); err != announcement.ErrInvalidOperation {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}
}

// TestCompose_EmptyImageIgnored tests that a zero-length image is treated as absent.
func TestCompose_EmptyImageIgnored(t *testing.T) {
	msg, err := Compose(Request{Operation: announcement.OperationCreated, Title: "T", Image: &Image{Name: "x.png"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msg.Attachments) != 0 {
		t.Error("expected no attachment for empty image")
	}
}

// TestImageContentType_SniffsWithoutExtension tests the byte-sniffing fallback.
func TestImageContentType_SniffsWithoutExtension(t *testing.T) {
	if got := imageContentType(&Image{Name: "upload", Data: pngBytes}); got != "image/png" {
		t.Errorf("expected image/png, got %q", got)
	}
}
