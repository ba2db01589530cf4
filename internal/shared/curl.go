// Utilities for importing credentials from a copied browser cURL command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlCredentials holds the auth-relevant headers extracted from a cURL command.
type CurlCredentials struct {
	BearerToken string
	TenantID    string
	Headers     map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command copied from the
// browser dev tools and extracts the bearer token and tenant header.
func ParseCurlFile(filepath string) (*CurlCredentials, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts auth headers.
func ParseCurlCommand(data []byte) (*CurlCredentials, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	creds := &CurlCredentials{Headers: make(map[string]string)}

	headerRegex := regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	matches := headerRegex.FindAllStringSubmatch(curlCmd, -1)

	for _, match := range matches {
		var headerLine string
		if match[1] != "" {
			headerLine = match[1]
		} else {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		creds.Headers[key] = value

		switch strings.ToLower(key) {
		case "authorization":
			creds.BearerToken = strings.TrimSpace(strings.TrimPrefix(value, "Bearer"))
		case "x-tenant-id":
			creds.TenantID = value
		}
	}

	if creds.BearerToken == "" {
		return nil, fmt.Errorf("%w: no Authorization header in curl command", ErrNotAuthenticated)
	}

	return creds, nil
}
