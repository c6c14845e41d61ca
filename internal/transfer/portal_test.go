package transfer

import (
	"context"
	"net/url"
	"testing"
)

func TestPortalBuildsEncodedURL(t *testing.T) {
	p := NewPortal("portal.dlvrit.ai")

	dest, err := p.CreatePackage(context.Background(), PackageInput{
		Project: "Trailer Cut",
		Sender:  "a@b.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(dest.UploadURL)
	if err != nil {
		t.Fatalf("invalid upload url %q: %v", dest.UploadURL, err)
	}
	if u.Scheme != "https" || u.Host != "portal.dlvrit.ai" {
		t.Fatalf("unexpected url %q", dest.UploadURL)
	}
	q := u.Query()
	if q.Get("name") != "Trailer Cut" || q.Get("email") != "a@b.com" {
		t.Fatalf("unexpected query params in %q", dest.UploadURL)
	}
}

func TestPortalKeepsExplicitScheme(t *testing.T) {
	p := NewPortal("http://localhost:9000/drop")

	dest, err := p.CreatePackage(context.Background(), PackageInput{Project: "x", Sender: "a@b.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(dest.UploadURL)
	if err != nil {
		t.Fatalf("invalid upload url: %v", err)
	}
	if u.Scheme != "http" || u.Host != "localhost:9000" || u.Path != "/drop" {
		t.Fatalf("unexpected url %q", dest.UploadURL)
	}
}

func TestPortalRequiresHost(t *testing.T) {
	p := NewPortal("  ")
	if _, err := p.CreatePackage(context.Background(), PackageInput{}); err == nil {
		t.Fatalf("expected error for missing portal host")
	}
}
