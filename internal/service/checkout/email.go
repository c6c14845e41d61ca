package checkout

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"dlvrit-backend/internal/config"
	"dlvrit-backend/internal/notify"
)

const uploadEmailSubject = "Your DLVRIT.ai upload link"

var uploadEmailTmpl = template.Must(template.New("upload").Parse(`
<p>Thanks for your payment!</p>
<p><strong>Project:</strong> {{.Project}}<br>
<strong>Minutes:</strong> {{.Minutes}}<br>
<strong>Upload link:</strong> <a href="{{.UploadURL}}">{{.UploadURL}}</a></p>
{{if .PortalPassword}}<p><strong>Portal password:</strong> {{.PortalPassword}}</p>
{{end}}<p>Please upload your file using the link above.</p>
`))

type uploadEmailData struct {
	Project        string
	Minutes        int64
	UploadURL      string
	PortalPassword string
}

// sendUploadEmail composes and delivers the upload-link email. In portal mode
// the shared portal password rides along, because the static portal cannot
// mint per-package tokens.
func (s *Service) sendUploadEmail(ctx context.Context, to, project string, minutes int64, uploadURL string) error {
	data := uploadEmailData{
		Project:   project,
		Minutes:   minutes,
		UploadURL: uploadURL,
	}
	if data.Project == "" {
		data.Project = "N/A"
	}
	if s.opts.TransferMode == config.TransferModePortal {
		data.PortalPassword = s.opts.PortalPassword
	}

	var buf bytes.Buffer
	if err := uploadEmailTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render upload email: %w", err)
	}

	return s.mailer.Send(ctx, notify.Message{
		From:    s.opts.MailFrom,
		To:      to,
		BCC:     s.opts.MailBCC,
		Subject: uploadEmailSubject,
		HTML:    buf.String(),
	})
}
