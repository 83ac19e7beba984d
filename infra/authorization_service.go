package infra

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tnqbao/gau-drive-service/config"
)

// AuthorizationService is the opaque identity provider. This gateway only
// asks it to validate access tokens; everything else about accounts lives on
// the other side.
type AuthorizationService struct {
	AuthorizationServiceURL string
	PrivateKey              string
	client                  *http.Client
}

func InitAuthorizationService(cfg *config.EnvConfig) *AuthorizationService {
	url := cfg.ExternalService.AuthorizationServiceURL
	if url == "" {
		panic("Authorization service URL is not configured")
	}

	return &AuthorizationService{
		AuthorizationServiceURL: url,
		PrivateKey:              cfg.PrivateKey,
		client:                  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *AuthorizationService) CheckAccessToken(token string) error {
	url := fmt.Sprintf("%s/api/v2/authorization/token/validate?token=%s", s.AuthorizationServiceURL, token)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Private-Key", s.PrivateKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("invalid token: %s", string(raw))
	}

	return nil
}
