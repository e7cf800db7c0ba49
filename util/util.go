package util

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/ghostink/ghostink/model"
)

// LookupEnvOrString returns the env value of key or defaultVal if unset
func LookupEnvOrString(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func LookupEnvOrBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseBool(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrBool[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt64[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		v, err := time.ParseDuration(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrDuration[%s]: %v\n", key, err)
			return defaultVal
		}
		return v
	}
	return defaultVal
}

// ParseLogLevel converts a level name into a gommon log level
func ParseLogLevel(lvl string) (log.Lvl, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	default:
		return log.DEBUG, fmt.Errorf("not a valid log level: %s", lvl)
	}
}

// StringFromEmbedFile reads a whole file from an embedded file system
func StringFromEmbedFile(embed fs.FS, filename string) (string, error) {
	file, err := embed.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// IsSafeRedirect reports whether target, resolved against hostURL, stays on the same host
// with an http or https scheme
func IsSafeRedirect(hostURL *url.URL, target string) bool {
	ref, err := url.Parse(target)
	if err != nil {
		return false
	}
	test := hostURL.ResolveReference(ref)
	return (test.Scheme == "http" || test.Scheme == "https") && test.Host == hostURL.Host
}

type viteManifestChunk struct {
	File string   `json:"file"`
	CSS  []string `json:"css"`
}

// ViteAssetsFor builds the list of scripts and styles for the index page.
// In dev mode the assets are served by the Vite dev server, otherwise they are
// resolved from the build manifest under <assetsDir>/dist/.vite/manifest.json.
func ViteAssetsFor(assetsDir string, devMode bool, devServer string, entries ...string) (model.ViteAssets, error) {
	assets := model.ViteAssets{DevMode: devMode}
	if devMode {
		devServer = strings.TrimRight(devServer, "/")
		assets.Scripts = append(assets.Scripts, devServer+"/@vite/client")
		for _, entry := range entries {
			if strings.HasSuffix(entry, ".css") {
				assets.Styles = append(assets.Styles, devServer+"/"+entry)
				continue
			}
			assets.Scripts = append(assets.Scripts, devServer+"/"+entry)
		}
		return assets, nil
	}

	content, err := os.ReadFile(filepath.Join(assetsDir, "dist", ".vite", "manifest.json"))
	if err != nil {
		return assets, fmt.Errorf("cannot read vite manifest: %w", err)
	}

	manifest := map[string]viteManifestChunk{}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return assets, fmt.Errorf("cannot decode vite manifest: %w", err)
	}

	for _, entry := range entries {
		chunk, ok := manifest[entry]
		if !ok {
			return assets, fmt.Errorf("vite manifest has no entry %s", entry)
		}
		if strings.HasSuffix(chunk.File, ".css") {
			assets.Styles = append(assets.Styles, "/src/dist/"+chunk.File)
		} else {
			assets.Scripts = append(assets.Scripts, "/src/dist/"+chunk.File)
		}
		for _, css := range chunk.CSS {
			assets.Styles = append(assets.Styles, "/src/dist/"+css)
		}
	}
	return assets, nil
}
