package pacaur

import (
	"bufio"
	"os"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// Load /etc/pacaur.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge PACAUR_* env overrides
	mergeEnvOverrides(cfg)

	// Ensure TMPDIR has a default
	if tmp := cfg.Values["TMPDIR"]; tmp == "" {
		cfg.Values["TMPDIR"] = "/tmp"
	}

	return cfg, nil
}

// Merge PACAUR_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PACAUR_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}

	// TMPDIR follows the environment when the config file is silent
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		if _, exists := cfg.Values["TMPDIR"]; !exists {
			cfg.Values["TMPDIR"] = tmp
		}
	}
}

func initConfig(cfg *Config) {
	pacmanBin = cfg.Values["PACAUR_PACMAN"]
	if pacmanBin == "" {
		pacmanBin = "pacman"
	}

	aurBaseURL = strings.TrimRight(cfg.Values["PACAUR_AUR_URL"], "/")
	if aurBaseURL == "" {
		aurBaseURL = "https://aur.archlinux.org"
	}

	CacheDir = cfg.Values["PACAUR_CACHE_DIR"]
	if CacheDir == "" {
		CacheDir = "/var/cache/pacaur"
	}
	CacheStore = CacheDir + "/snapshots"

	tmpDir = cfg.Values["TMPDIR"]
	if tmpDir == "" {
		tmpDir = "/tmp"
	}

	Debug = cfg.Values["PACAUR_DEBUG"] == "1"
}
