// Package ipfs replicates review payloads to content-addressable storage.
// Three interchangeable backends are supported; publication is best-effort
// and never blocks review acceptance.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend names, also used as the preferred-service configuration values.
const (
	ServiceLocalIPFS   = "local-ipfs"
	ServicePinata      = "pinata"
	ServiceWeb3Storage = "web3storage"
)

const (
	defaultPinataBaseURL      = "https://api.pinata.cloud"
	defaultWeb3StorageBaseURL = "https://api.web3.storage"
	defaultLocalAPIURL        = "http://localhost:5001/api/v0"

	attemptTimeout = 30 * time.Second
	verifyTimeout  = 10 * time.Second
)

// DefaultGateway is the retrieval endpoint used by Verify when none is given.
const DefaultGateway = "https://ipfs.io/ipfs/"

type Config struct {
	PinataAPIKey       string
	PinataSecretKey    string
	PinataBaseURL      string
	Web3StorageAPIKey  string
	Web3StorageBaseURL string
	LocalAPIURL        string
	LocalEnabled       bool
}

// ConfigFromEnv reads backend credentials the same way the surrounding
// deployment configures everything else: plain environment variables.
func ConfigFromEnv() Config {
	localURL := os.Getenv("IPFS_API_URL")
	if localURL == "" {
		localURL = defaultLocalAPIURL
	}
	return Config{
		PinataAPIKey:      os.Getenv("PINATA_API_KEY"),
		PinataSecretKey:   os.Getenv("PINATA_SECRET_KEY"),
		Web3StorageAPIKey: os.Getenv("WEB3STORAGE_API_KEY"),
		LocalAPIURL:       localURL,
		LocalEnabled:      true,
	}
}

// UploadResult is the terminal outcome of a publish call. All backend
// failures are folded into it; Upload never returns an error.
type UploadResult struct {
	Success   bool   `json:"success"`
	Hash      string `json:"hash,omitempty"`
	Size      string `json:"size,omitempty"`
	Service   string `json:"service,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
	Attempts  int    `json:"attempts,omitempty"`
}

type VerificationResult struct {
	Success bool            `json:"success"`
	Hash    string          `json:"hash"`
	Content json.RawMessage `json:"content,omitempty"`
	Gateway string          `json:"gateway,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type ServiceStatus struct {
	Configured   bool `json:"configured"`
	HasAPIKey    bool `json:"hasApiKey"`
	HasSecretKey bool `json:"hasSecretKey,omitempty"`
}

type LocalStatus struct {
	Enabled bool `json:"enabled"`
}

type ConfigurationStatus struct {
	Pinata      ServiceStatus `json:"pinata"`
	Web3Storage ServiceStatus `json:"web3storage"`
	Local       LocalStatus   `json:"local"`
}

type uploadMetadata struct {
	UploadedAt string `json:"uploadedAt"`
	Filename   string `json:"filename"`
	Version    string `json:"version"`
}

// Uploader fans a payload out to the first backend that accepts it. The
// fallback order is fixed: local node, then Pinata, then Web3.Storage, with
// the preferred backend moved to the front and not retried.
type Uploader struct {
	cfg      Config
	backends []Backend
	log      *logrus.Logger
}

func NewUploader(cfg Config, log *logrus.Logger) *Uploader {
	if cfg.PinataBaseURL == "" {
		cfg.PinataBaseURL = defaultPinataBaseURL
	}
	if cfg.Web3StorageBaseURL == "" {
		cfg.Web3StorageBaseURL = defaultWeb3StorageBaseURL
	}
	if cfg.LocalAPIURL == "" {
		cfg.LocalAPIURL = defaultLocalAPIURL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	client := &http.Client{Timeout: attemptTimeout}
	return &Uploader{
		cfg: cfg,
		backends: []Backend{
			&localBackend{baseURL: cfg.LocalAPIURL, enabled: cfg.LocalEnabled, client: client},
			&pinataBackend{apiKey: cfg.PinataAPIKey, secretKey: cfg.PinataSecretKey, baseURL: cfg.PinataBaseURL, client: client},
			&web3storageBackend{apiKey: cfg.Web3StorageAPIKey, baseURL: cfg.Web3StorageBaseURL, client: client},
		},
		log: log,
	}
}

// Upload publishes payload as a JSON file, trying preferredService first and
// falling back through the remaining backends. It always returns a result,
// never an error: total failure is reported with Success=false and the last
// backend error.
func (u *Uploader) Upload(ctx context.Context, payload interface{}, filename, preferredService string) *UploadResult {
	raw, err := mergeJSON(payload, uploadMetadata{
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
		Filename:   filename,
		Version:    "1.0",
	})
	if err != nil {
		return &UploadResult{Success: false, Error: fmt.Sprintf("encode payload: %v", err)}
	}

	attempts := 0
	var lastErr error
	for _, backend := range u.orderFor(preferredService) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		result, err := backend.AttemptPublish(attemptCtx, raw, filename)
		cancel()
		if err == nil {
			u.log.WithFields(logrus.Fields{
				"service": backend.Name(),
				"hash":    result.Hash,
			}).Info("review payload published")
			result.Attempts = attempts
			return result
		}
		lastErr = err
		u.log.WithFields(logrus.Fields{
			"service": backend.Name(),
			"error":   err.Error(),
		}).Warn("publication backend failed, falling back")
	}

	u.log.WithField("attempts", attempts).Error("all publication backends failed")
	return &UploadResult{
		Success:  false,
		Error:    fmt.Sprintf("all IPFS upload services failed: %v", lastErr),
		Attempts: attempts,
	}
}

// orderFor returns the backends with preferred first, then the rest in the
// fixed fallback order, each backend at most once.
func (u *Uploader) orderFor(preferred string) []Backend {
	ordered := make([]Backend, 0, len(u.backends))
	for _, b := range u.backends {
		if b.Name() == preferred {
			ordered = append(ordered, b)
			break
		}
	}
	for _, b := range u.backends {
		if b.Name() != preferred {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

// Verify reads previously published content back through a public gateway.
// Diagnostics only; it is never called on the write path.
func (u *Uploader) Verify(ctx context.Context, hash, gateway string) *VerificationResult {
	if gateway == "" {
		gateway = DefaultGateway
	}
	reqCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, gateway+hash, nil)
	if err != nil {
		return &VerificationResult{Success: false, Hash: hash, Gateway: gateway, Error: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &VerificationResult{Success: false, Hash: hash, Gateway: gateway, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &VerificationResult{
			Success: false,
			Hash:    hash,
			Gateway: gateway,
			Error:   fmt.Sprintf("gateway returned status %d", resp.StatusCode),
		}
	}
	var content json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return &VerificationResult{Success: false, Hash: hash, Gateway: gateway, Error: "invalid response from IPFS gateway"}
	}
	return &VerificationResult{Success: true, Hash: hash, Content: content, Gateway: gateway}
}

// GatewayURLs templates the public read paths for a remote identifier.
// Pure string work, no I/O.
func (u *Uploader) GatewayURLs(hash string) map[string]string {
	return map[string]string{
		"ipfsIo":      "https://ipfs.io/ipfs/" + hash,
		"cloudflare":  "https://cloudflare-ipfs.com/ipfs/" + hash,
		"dweb":        "https://dweb.link/ipfs/" + hash,
		"gateway":     "https://gateway.pinata.cloud/ipfs/" + hash,
		"web3Storage": fmt.Sprintf("https://%s.ipfs.w3s.link/", hash),
	}
}

// CheckConfiguration reports which backends currently hold credentials.
// Pure inspection, used by the health endpoint.
func (u *Uploader) CheckConfiguration() ConfigurationStatus {
	return ConfigurationStatus{
		Pinata: ServiceStatus{
			Configured:   u.cfg.PinataAPIKey != "" && u.cfg.PinataSecretKey != "",
			HasAPIKey:    u.cfg.PinataAPIKey != "",
			HasSecretKey: u.cfg.PinataSecretKey != "",
		},
		Web3Storage: ServiceStatus{
			Configured: u.cfg.Web3StorageAPIKey != "",
			HasAPIKey:  u.cfg.Web3StorageAPIKey != "",
		},
		Local: LocalStatus{Enabled: u.cfg.LocalEnabled},
	}
}

// mergeJSON flattens payload and the upload metadata into one JSON object,
// with the metadata under the "_metadata" key.
func mergeJSON(payload interface{}, meta uploadMetadata) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var merged map[string]interface{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	merged["_metadata"] = meta
	return json.MarshalIndent(merged, "", "  ")
}
