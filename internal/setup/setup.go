// Package setup registers the radassist MCP server with a desktop MCP client.
package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-json"
)

const (
	// ServerName is the key of the radassist entry in the client's mcpServers map.
	ServerName = "radassist"
	// BinaryName is the default MCP server executable name.
	BinaryName = "mcp-server"

	mcpServersKey = "mcpServers"
)

// ServerEntry is one MCP server launch definition in the client config.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// ClientConfig is the desktop client configuration. Keys other than mcpServers are kept as is.
type ClientConfig struct {
	MCPServers map[string]ServerEntry

	other map[string]json.RawMessage
}

// Options controls Install.
type Options struct {
	// ClientConfigPath overrides the per-OS client config location.
	ClientConfigPath string
	// BinaryPath is the MCP server executable; empty searches PATH and common locations.
	BinaryPath string
	// ConfigFile is passed to the server as --config when set.
	ConfigFile string
}

// Status describes the current registration.
type Status struct {
	ClientConfigPath string
	Configured       bool
	Command          string
	Issues           []string
}

// ClientConfigPath returns the desktop client config location for this OS.
func ClientConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "Claude")
			break
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "Claude")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadClientConfig reads the client config. A missing file yields an empty config.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		MCPServers: make(map[string]ServerEntry),
		other:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read client config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.other); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	if raw, ok := cfg.other[mcpServersKey]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", mcpServersKey, err)
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = make(map[string]ServerEntry)
		}
		delete(cfg.other, mcpServersKey)
	}
	return cfg, nil
}

// SaveClientConfig writes cfg to path, creating the directory when needed.
func SaveClientConfig(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]any, len(cfg.other)+1)
	for k, v := range cfg.other {
		out[k] = v
	}
	out[mcpServersKey] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal client config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write client config: %w", err)
	}
	return nil
}

// Install adds or replaces the radassist entry and returns the config path it wrote.
func Install(opts Options) (string, error) {
	path, err := resolvePath(opts.ClientConfigPath)
	if err != nil {
		return "", err
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return "", err
	}

	binary := opts.BinaryPath
	if binary == "" {
		if binary, err = findBinary(BinaryName); err != nil {
			return "", fmt.Errorf("could not find server binary: %w", err)
		}
	}

	entry := ServerEntry{Command: binary}
	if opts.ConfigFile != "" {
		abs, err := filepath.Abs(opts.ConfigFile)
		if err != nil {
			return "", err
		}
		entry.Args = []string{"--config", abs}
	}
	cfg.MCPServers[ServerName] = entry

	if err := SaveClientConfig(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// Uninstall removes the radassist entry. It reports whether an entry existed.
func Uninstall(clientConfigPath string) (bool, error) {
	path, err := resolvePath(clientConfigPath)
	if err != nil {
		return false, err
	}
	cfg, err := LoadClientConfig(path)
	if err != nil {
		return false, err
	}
	if _, ok := cfg.MCPServers[ServerName]; !ok {
		return false, nil
	}
	delete(cfg.MCPServers, ServerName)
	return true, SaveClientConfig(path, cfg)
}

// GetStatus inspects the registration.
func GetStatus(clientConfigPath string) (*Status, error) {
	path, err := resolvePath(clientConfigPath)
	if err != nil {
		return nil, err
	}
	status := &Status{ClientConfigPath: path}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		return nil, err
	}

	entry, ok := cfg.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "radassist is not registered with the MCP client")
		return status, nil
	}
	status.Configured = true
	status.Command = entry.Command

	info, err := os.Stat(entry.Command)
	switch {
	case err != nil:
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found: %s", entry.Command))
	case info.Mode()&0o111 == 0:
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", entry.Command))
	}
	return status, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ClientConfigPath()
}

// findBinary looks for name on PATH, then in common install locations.
func findBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	locations := []string{
		"./" + name,
		"./bin/" + name,
		"/usr/local/bin/" + name,
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".local", "bin", name))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			if abs, err := filepath.Abs(loc); err == nil {
				return abs, nil
			}
			return loc, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in PATH or common locations", name)
}
