// Package config loads gateway configuration from HARBOR_BOOST_* environment
// variables, applying the same "parse then fill defaults" idiom the teacher
// repo uses for its own YAML config, adapted here to a flat env-var source.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harborlabs/boost/internal/logging"
)

// Backend is one configured upstream OpenAI-compatible (or Ollama-native) API.
type Backend struct {
	Name string
	URL  string
	Key  string
}

// StatusStyle controls how module status text is rendered into chunks.
type StatusStyle string

const (
	StatusCodeblock StatusStyle = "md:codeblock"
	StatusH1        StatusStyle = "md:h1"
	StatusH2        StatusStyle = "md:h2"
	StatusH3        StatusStyle = "md:h3"
	StatusPlain     StatusStyle = "plain"
	StatusNone      StatusStyle = "none"
)

// Config is the fully resolved process configuration.
type Config struct {
	Host string
	Port int

	Backends []Backend

	Modules       []string // advertised module names, or ["all"]
	ModuleFolders []string // accepted for interface parity; unused (see §4.3 of SPEC_FULL.md)

	IntermediateOutput bool
	StatusStyle        StatusStyle

	ExtraLLMParams  map[string]string
	ModelFilter     string
	ModelFilterFile string

	APIKeys []string

	BaseModels bool

	DirectTasks []string
}

var defaultDirectTasks = []string{
	"3-5 word title",
	"generate a concise",
	"### task:",
	"autocompletion",
	"is web search necessary",
	"harbor-boost-test-marker",
}

// Load reads configuration from the environment, first attempting to load a
// local .env file (best-effort, mirroring the teacher's own godotenv.Load
// usage for local dev).
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warnf("config: .env load: %v", err)
	}

	c := &Config{
		Host:               envString("HARBOR_BOOST_HOST", "0.0.0.0"),
		Port:               envInt("HARBOR_BOOST_PORT", 8000),
		Modules:            envList("HARBOR_BOOST_MODULES", []string{"all"}),
		ModuleFolders:      envList("HARBOR_BOOST_MODULE_FOLDERS", nil),
		IntermediateOutput: envBool("HARBOR_BOOST_INTERMEDIATE_OUTPUT", true),
		StatusStyle:        StatusStyle(envString("HARBOR_BOOST_STATUS_STYLE", string(StatusCodeblock))),
		ExtraLLMParams:     envKV("HARBOR_BOOST_EXTRA_LLM_PARAMS"),
		ModelFilter:        envString("HARBOR_BOOST_MODEL_FILTER", ""),
		ModelFilterFile:    envString("HARBOR_BOOST_MODEL_FILTER_FILE", ""),
		APIKeys:            envList("HARBOR_BOOST_API_KEYS", envList("HARBOR_BOOST_API_KEY", nil)),
		BaseModels:         envBool("HARBOR_BOOST_BASE_MODELS", false),
		DirectTasks:        envList("HARBOR_BOOST_DIRECT_TASKS", defaultDirectTasks),
	}

	c.Backends = loadBackends()
	return c
}

func loadBackends() []Backend {
	urls := envList("HARBOR_BOOST_OPENAI_URLS", nil)
	keys := envList("HARBOR_BOOST_OPENAI_KEYS", nil)

	backends := make([]Backend, 0, len(urls))
	for i, url := range urls {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		backends = append(backends, Backend{Name: url, URL: url, Key: key})
	}

	// Named backends: HARBOR_BOOST_OPENAI_URL_<NAME> / _KEY_<NAME>
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k, v := parts[0], parts[1]
		const prefix = "HARBOR_BOOST_OPENAI_URL_"
		if strings.HasPrefix(k, prefix) {
			name := strings.TrimPrefix(k, prefix)
			backends = append(backends, Backend{
				Name: name,
				URL:  v,
				Key:  os.Getenv("HARBOR_BOOST_OPENAI_KEY_" + name),
			})
		}
	}

	if len(backends) == 0 {
		logging.Warn("config: no upstream backends configured (HARBOR_BOOST_OPENAI_URLS is empty)")
	}
	return backends
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// envKV parses a "k=v,k2=v2" string into a map.
func envKV(key string) map[string]string {
	v := os.Getenv(key)
	out := map[string]string{}
	if v == "" {
		return out
	}
	for _, pair := range strings.Split(v, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return out
}
