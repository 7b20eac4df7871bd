package utils

import (
	"fmt"
	"net/url"
)

// GetTransactionSessionUrl returns the API url of a transaction session. baseURL overrides
// the local server address when set.
func GetTransactionSessionUrl(baseURL string, serverPort int, sessionId string) (string, error) {
	if baseURL != "" {
		parsedUrl, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url: %w", err)
		}
		if parsedUrl.Scheme == "" || parsedUrl.Host == "" {
			return "", fmt.Errorf("invalid base url: %s", baseURL)
		}
		parsedUrl.Path = fmt.Sprintf("/api/tx/%s", sessionId)
		return parsedUrl.String(), nil
	}

	return fmt.Sprintf("http://localhost:%d/api/tx/%s", serverPort, sessionId), nil
}
