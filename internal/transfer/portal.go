package transfer

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// PortalProvisioner derives the upload URL from a static portal host with no
// external call. The portal itself authenticates uploads with a shared
// password delivered in the notification email.
type PortalProvisioner struct {
	host string
}

// NewPortal builds a PortalProvisioner for the given portal host. The host may
// be bare ("portal.example.com") or carry a scheme.
func NewPortal(host string) *PortalProvisioner {
	return &PortalProvisioner{host: host}
}

func (p *PortalProvisioner) CreatePackage(_ context.Context, in PackageInput) (*Destination, error) {
	if strings.TrimSpace(p.host) == "" {
		return nil, errors.New("portal host not configured")
	}
	base := p.host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("name", in.Project)
	q.Set("email", in.Sender)
	u.RawQuery = q.Encode()
	return &Destination{UploadURL: u.String()}, nil
}
