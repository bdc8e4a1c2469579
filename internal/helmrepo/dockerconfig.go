package helmrepo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DockerConfigJSON is the payload stored under .dockerconfigjson in a
// kubernetes.io/dockerconfigjson secret.
type DockerConfigJSON struct {
	Auths map[string]DockerConfigEntry `json:"auths"`
}

// DockerConfigEntry holds the credentials for one registry.
type DockerConfigEntry struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
	Auth     string `json:"auth,omitempty"`
}

// BuildDockerConfigJSON encodes a single-registry docker config.
func BuildDockerConfigJSON(server, username, password, email string) ([]byte, error) {
	if server == "" {
		return nil, fmt.Errorf("registry server is required")
	}
	cfg := DockerConfigJSON{
		Auths: map[string]DockerConfigEntry{
			server: {
				Username: username,
				Password: password,
				Email:    email,
				Auth:     base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
			},
		},
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode docker config for %s: %w", server, err)
	}
	return data, nil
}

// RegistryCredentials returns the username and password stored for the host of
// registryURL. Registry keys are matched by host, so "https://ghcr.io/v1/" and
// "ghcr.io" are equivalent.
func RegistryCredentials(data []byte, registryURL string) (string, string, error) {
	var cfg DockerConfigJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", "", fmt.Errorf("failed to decode docker config: %w", err)
	}

	host := registryHost(registryURL)
	for server, entry := range cfg.Auths {
		if registryHost(server) != host {
			continue
		}
		if entry.Username != "" || entry.Password != "" {
			return entry.Username, entry.Password, nil
		}
		decoded, err := base64.StdEncoding.DecodeString(entry.Auth)
		if err != nil {
			return "", "", fmt.Errorf("failed to decode auth for registry %s: %w", server, err)
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return "", "", fmt.Errorf("malformed auth for registry %s", server)
		}
		return user, pass, nil
	}
	return "", "", fmt.Errorf("no credentials for registry %s", host)
}

func registryHost(s string) string {
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimRight(s, "/")
	}
	return u.Host
}
