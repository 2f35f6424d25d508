package notification

import (
	"bytes"
	"html/template"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"noticeboard/internal/domain/announcement"
)

// ImageContentID is the content-id the inline image is referenced by in the HTML body.
const ImageContentID = "announcementImage"

// Subject prefixes per operation kind.
const (
	SubjectCreated = "NEW ANNOUNCEMENT: "
	SubjectUpdated = "UPDATED ANNOUNCEMENT: "
	SubjectDeleted = "CANCELLED ANNOUNCEMENT: "
)

// Image is an in-memory image to embed in a notification.
type Image struct {
	Name string // Original or stored file name, used for the attachment filename
	Data []byte
}

// Request is the ephemeral input to Compose.
type Request struct {
	Operation string // announcement.OperationCreated / Updated / Deleted
	Title     string
	Body      string
	Image     *Image
}

// Attachment is a file carried with the message. Inline attachments set ContentID.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Data        []byte
}

// Message is a fully rendered notification ready for dispatch.
type Message struct {
	Subject     string
	HTML        string
	Attachments []Attachment
}

// templateData feeds the per-operation templates.
type templateData struct {
	Title    string
	Body     template.HTML
	HasImage bool
	CID      string
}

const createdTemplate = `<div style="font-family: Arial, sans-serif; padding: 20px; background: #f4f4f4;">
<div style="max-width: 600px; margin: auto; background: white; padding: 25px; border-radius: 10px; border: 1px solid #ccc;">
<h2 style="color: #333; border-bottom: 2px solid #cccc4d; padding-bottom: 10px;">{{.Title}}</h2>
<div style="color: #555; line-height: 1.6;">{{.Body}}</div>
{{if .HasImage}}<br><div style="text-align:center;"><img src="cid:{{.CID}}" style="max-width: 100%; border-radius: 8px;"></div>{{end}}
</div>
</div>`

const updatedTemplate = `<div style="font-family: Arial, sans-serif; padding: 20px; background: #f4f4f4;">
<div style="max-width: 600px; margin: auto; background: white; padding: 25px; border-radius: 10px; border: 1px solid #ccc;">
<p style="color: #d4ac0d; font-weight: bold; margin-bottom: 5px;">Announcement Updated:</p>
<h2 style="color: #333; border-bottom: 2px solid #cccc4d; padding-bottom: 10px;">{{.Title}}</h2>
<div style="color: #555; line-height: 1.6;">{{.Body}}</div>
{{if .HasImage}}<br><div style="text-align:center;"><img src="cid:{{.CID}}" style="max-width: 100%; border-radius: 8px;"></div>{{end}}
<p style="font-size: 12px; color: #888; margin-top: 20px; text-align: center; border-top: 1px solid #eee; padding-top: 10px;">View the full details on the employee portal.</p>
</div>
</div>`

const deletedTemplate = `<div style="font-family: Arial, sans-serif; padding: 20px; background: #f4f4f4;">
<div style="max-width: 600px; margin: auto; background: white; padding: 25px; border-radius: 10px; border: 2px solid #cc0000;">
<h2 style="color: #cc0000; text-align:center;">Announcement Removed/Cancelled</h2>
<p style="color: #666; font-style: italic; text-align:center;">The following post has been taken down from the portal and will no longer go ahead:</p>
<hr style="border: 0; border-top: 1px solid #eee;">
<h3 style="color: #333;">{{.Title}}</h3>
<div style="color: #555; line-height: 1.6;">{{.Body}}</div>
{{if .HasImage}}<br><div style="text-align:center;"><img src="cid:{{.CID}}" style="max-width: 100%; border-radius: 8px; opacity: 0.6;"></div>{{end}}
</div>
</div>`

var templates = map[string]*template.Template{
	announcement.OperationCreated: template.Must(template.New(announcement.OperationCreated).Parse(createdTemplate)),
	announcement.OperationUpdated: template.Must(template.New(announcement.OperationUpdated).Parse(updatedTemplate)),
	announcement.OperationDeleted: template.Must(template.New(announcement.OperationDeleted).Parse(deletedTemplate)),
}

var subjects = map[string]string{
	announcement.OperationCreated: SubjectCreated,
	announcement.OperationUpdated: SubjectUpdated,
	announcement.OperationDeleted: SubjectDeleted,
}

// Compose renders the notification for one announcement mutation.
// It is deterministic: the same request always yields the same message.
// PRE: req.Operation is a valid operation kind
// POST: Returns subject, HTML body and (when an image is present) one inline attachment
func Compose(req Request) (Message, error) {
	tpl, ok := templates[req.Operation]
	if !ok {
		return Message{}, announcement.ErrInvalidOperation
	}

	body := RenderBody(req.Body)

	hasImage := req.Image != nil && len(req.Image.Data) > 0
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, templateData{
		Title:    req.Title,
		Body:     body,
		HasImage: hasImage,
		CID:      ImageContentID,
	}); err != nil {
		return Message{}, err
	}

	msg := Message{
		Subject: subjects[req.Operation] + req.Title,
		HTML:    buf.String(),
	}
	if hasImage {
		msg.Attachments = []Attachment{{
			Filename:    attachmentName(req.Image.Name),
			ContentType: imageContentType(req.Image),
			ContentID:   ImageContentID,
			Data:        req.Image.Data,
		}}
	}
	return msg, nil
}

// lineBreaks folds CRLF and lone CR into LF before newlines become <br>.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// RenderBody converts a plain-text announcement body to HTML.
// The text is escaped verbatim and every newline becomes exactly one <br>.
func RenderBody(body string) template.HTML {
	escaped := template.HTMLEscapeString(lineBreaks.Replace(body))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func attachmentName(name string) string {
	if name == "" {
		return "announcement-image"
	}
	return filepath.Base(name)
}

// imageContentType prefers the file extension and falls back to sniffing the bytes.
func imageContentType(img *Image) string {
	if ct := mime.TypeByExtension(filepath.Ext(img.Name)); ct != "" {
		return ct
	}
	return http.DetectContentType(img.Data)
}
