package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dlvrit-backend/internal/domain"
)

const defaultPackageName = "DLVRIT Upload"

// MASVClient provisions upload packages through the MASV teams API.
type MASVClient struct {
	baseURL    string
	teamID     string
	apiKey     string
	portalHost string
	httpClient *http.Client
	logger     *log.Logger
}

// NewMASV builds a MASVClient. portalHost is used to derive an upload URL when
// the API returns only an access token. timeout bounds every provisioning call.
func NewMASV(baseURL, teamID, apiKey, portalHost string, timeout time.Duration, logger *log.Logger) *MASVClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MASVClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		teamID:     teamID,
		apiKey:     apiKey,
		portalHost: portalHost,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type masvPackageRequest struct {
	Description string          `json:"description"`
	Name        string          `json:"name"`
	Sender      string          `json:"sender"`
	Recipients  []masvRecipient `json:"recipients"`
}

type masvRecipient struct {
	Email string `json:"email"`
}

type masvPackageResponse struct {
	UploadURL   string `json:"upload_url"`
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

func (c *MASVClient) CreatePackage(ctx context.Context, in PackageInput) (*Destination, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = "Upload package for DLVRIT"
	}
	payload := masvPackageRequest{
		Description: desc,
		Name:        defaultPackageName,
		Sender:      in.Sender,
		Recipients:  []masvRecipient{{Email: in.Recipient}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode package request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/teams/%s/packages", c.baseURL, c.teamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Printf("masv: creating package team=%s sender=%s", c.teamID, in.Sender)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("masv request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var pkg masvPackageResponse
	if err := json.Unmarshal(raw, &pkg); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("decode package response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := pkg.Message
		if msg == "" {
			msg = fmt.Sprintf("transfer provider rejected package creation (status %d)", resp.StatusCode)
		}
		c.logger.Printf("masv: package creation failed status=%d body_len=%d", resp.StatusCode, len(raw))
		return nil, &domain.StatusError{Status: resp.StatusCode, Message: msg}
	}

	dest := &Destination{UploadURL: pkg.UploadURL, AccessToken: pkg.AccessToken}
	if dest.UploadURL == "" && dest.AccessToken != "" {
		dest.UploadURL = fmt.Sprintf("https://%s/upload/%s", c.portalHost, dest.AccessToken)
	}
	if dest.UploadURL == "" {
		return nil, errors.New("transfer provider did not return an upload URL or access token")
	}
	c.logger.Printf("masv: package created team=%s", c.teamID)
	return dest, nil
}
