package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// credentialVars are checked in order. Each may hold inline JSON or a path.
var credentialVars = []string{
	"AM_GCS_CREDENTIALS",
	"GOOGLE_APPLICATION_CREDENTIALS_JSON",
	"GOOGLE_APPLICATION_CREDENTIALS",
}

// ClientOptionsFromEnv returns the credential option for the first set
// variable in credentialVars. No options means application default
// credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	for _, name := range credentialVars {
		creds := strings.TrimSpace(os.Getenv(name))
		if creds == "" {
			continue
		}
		if strings.HasPrefix(creds, "{") {
			return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
		}
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
	return nil
}
