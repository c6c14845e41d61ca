package transfer

import "context"

// PackageInput carries what the provider needs to open an upload destination.
type PackageInput struct {
	Project     string
	Description string
	Sender      string
	Recipient   string
}

// Destination is a provisioned upload target. AccessToken is a bearer secret
// and must never reach a log sink.
type Destination struct {
	UploadURL   string
	AccessToken string
}

// Provisioner is the transfer capability: create or derive a destination URL
// the customer uploads to.
type Provisioner interface {
	CreatePackage(ctx context.Context, in PackageInput) (*Destination, error)
}
