package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// Backend is one content-addressable storage provider. AttemptPublish returns
// the remote identifier assigned to the payload, or an error when the backend
// is unconfigured, unreachable, or answers with a malformed body.
type Backend interface {
	Name() string
	Configured() bool
	AttemptPublish(ctx context.Context, payload []byte, filename string) (*UploadResult, error)
}

func buildMultipart(payload []byte, filename string, extra map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", err
	}

	for field, value := range extra {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// localBackend talks to the HTTP API of an IPFS node, typically a daemon on
// localhost.
type localBackend struct {
	baseURL string
	enabled bool
	client  *http.Client
}

func (b *localBackend) Name() string     { return ServiceLocalIPFS }
func (b *localBackend) Configured() bool { return b.enabled }

func (b *localBackend) AttemptPublish(ctx context.Context, payload []byte, filename string) (*UploadResult, error) {
	if !b.enabled {
		return nil, fmt.Errorf("local IPFS not enabled")
	}

	body, contentType, err := buildMultipart(payload, filename, nil)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/add", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("local IPFS API returned status %d", resp.StatusCode)
	}

	var out struct {
		Name string `json:"Name"`
		Hash string `json:"Hash"`
		Size string `json:"Size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Hash == "" {
		return nil, fmt.Errorf("invalid response from local IPFS API")
	}
	return &UploadResult{
		Success:   true,
		Hash:      out.Hash,
		Size:      out.Size,
		Service:   b.Name(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// pinataBackend publishes through the Pinata pinning service.
type pinataBackend struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client
}

func (b *pinataBackend) Name() string     { return ServicePinata }
func (b *pinataBackend) Configured() bool { return b.apiKey != "" && b.secretKey != "" }

func (b *pinataBackend) AttemptPublish(ctx context.Context, payload []byte, filename string) (*UploadResult, error) {
	if !b.Configured() {
		return nil, fmt.Errorf("pinata API credentials not configured: set PINATA_API_KEY and PINATA_SECRET_KEY")
	}

	// Pinata wants the product identifier in the pin metadata so pins stay
	// searchable; pull it back out of the payload rather than widening the
	// Backend interface.
	var probe struct {
		ProductID string `json:"productId"`
	}
	_ = json.Unmarshal(payload, &probe)
	if probe.ProductID == "" {
		probe.ProductID = "unknown"
	}

	pinataMetadata, _ := json.Marshal(map[string]interface{}{
		"name": filename,
		"keyvalues": map[string]string{
			"type":      "review",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"productId": probe.ProductID,
		},
	})
	pinataOptions, _ := json.Marshal(map[string]interface{}{
		"cidVersion":        1,
		"wrapWithDirectory": false,
	})

	body, contentType, err := buildMultipart(payload, filename, map[string]string{
		"pinataMetadata": string(pinataMetadata),
		"pinataOptions":  string(pinataOptions),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("pinata API returned status %d", resp.StatusCode)
	}

	var out struct {
		IpfsHash  string `json:"IpfsHash"`
		PinSize   int64  `json:"PinSize"`
		Timestamp string `json:"Timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.IpfsHash == "" {
		return nil, fmt.Errorf("invalid response from Pinata API")
	}
	return &UploadResult{
		Success:   true,
		Hash:      out.IpfsHash,
		Size:      strconv.FormatInt(out.PinSize, 10),
		Service:   b.Name(),
		Timestamp: out.Timestamp,
	}, nil
}

// web3storageBackend publishes through the Web3.Storage hosted service.
type web3storageBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (b *web3storageBackend) Name() string     { return ServiceWeb3Storage }
func (b *web3storageBackend) Configured() bool { return b.apiKey != "" }

func (b *web3storageBackend) AttemptPublish(ctx context.Context, payload []byte, filename string) (*UploadResult, error) {
	if !b.Configured() {
		return nil, fmt.Errorf("web3.Storage API key not configured: set WEB3STORAGE_API_KEY")
	}

	body, contentType, err := buildMultipart(payload, filename, nil)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("web3.Storage API returned status %d", resp.StatusCode)
	}

	var out struct {
		CID  string `json:"cid"`
		Size int64  `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.CID == "" {
		return nil, fmt.Errorf("invalid response from Web3.Storage API")
	}
	return &UploadResult{
		Success:   true,
		Hash:      out.CID,
		Size:      strconv.FormatInt(out.Size, 10),
		Service:   b.Name(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
