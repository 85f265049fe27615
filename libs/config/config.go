package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config contains runtime configuration and vendor selection.
type Config struct {
	// Vendor keys: e.g., "whisper", "piper", "ollama", "gemini"
	TTSVendor       string `json:"tts_vendor"`
	STTVendor       string `json:"stt_vendor"`
	LLMVendor       string `json:"llm_vendor"`
	EmbeddingVendor string `json:"embedding_vendor"`

	// HTTP listen port for the sales-agent API.
	HTTPPort string `json:"http_port"`
	// Path to the sqlite file used for the finished-call archive.
	DatabasePath string `json:"database_path"`
	// Secret for per-call access tokens. Empty disables token checks.
	CallTokenSecret string `json:"call_token_secret"`
	// Knowledge-base text file for the retrieval pipeline.
	KnowledgeFile string `json:"knowledge_file"`
	// Directory where synthesized agent audio is written.
	VoiceOutputDir string `json:"voice_output_dir"`

	// Generic map for vendor-specific settings
	VendorSettings map[string]map[string]string `json:"vendor_settings"`
}

// LoadFromEnv constructs a Config reading from environment variables.
// Supported env vars:
//
//	TTS_VENDOR, STT_VENDOR, LLM_VENDOR, EMBEDDING_VENDOR
//	HTTP_PORT, DATABASE_PATH, CALL_TOKEN_SECRET, KNOWLEDGE_FILE, VOICE_OUTPUT_DIR
//	OLLAMA_ENDPOINT, OLLAMA_MODEL, OLLAMA_EMBED_MODEL
//	GEMINI_API_KEY, GEMINI_MODEL, GEMINI_EMBED_MODEL
//	WHISPER_ENDPOINT, PIPER_ENDPOINT
func LoadFromEnv() *Config {
	cfg := &Config{
		TTSVendor:       getEnv("TTS_VENDOR", "piper"),
		STTVendor:       getEnv("STT_VENDOR", "whisper"),
		LLMVendor:       getEnv("LLM_VENDOR", "ollama"),
		EmbeddingVendor: getEnv("EMBEDDING_VENDOR", "ollama"),
		HTTPPort:        getEnv("HTTP_PORT", "8001"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/ai.salesagent.db"),
		CallTokenSecret: getEnv("CALL_TOKEN_SECRET", ""),
		KnowledgeFile:   getEnv("KNOWLEDGE_FILE", "ai_bootcamp_info.txt"),
		VoiceOutputDir:  getEnv("VOICE_OUTPUT_DIR", "out"),
		VendorSettings:  make(map[string]map[string]string),
	}

	cfg.setVendor("whisper", "endpoint", getEnv("WHISPER_ENDPOINT", ""))
	cfg.setVendor("piper", "endpoint", getEnv("PIPER_ENDPOINT", ""))
	cfg.setVendor("ollama", "endpoint", getEnv("OLLAMA_ENDPOINT", ""))
	cfg.setVendor("ollama", "model", getEnv("OLLAMA_MODEL", ""))
	cfg.setVendor("ollama", "embed_model", getEnv("OLLAMA_EMBED_MODEL", ""))
	cfg.setVendor("gemini", "api_key", getEnv("GEMINI_API_KEY", ""))
	cfg.setVendor("gemini", "model", getEnv("GEMINI_MODEL", ""))
	cfg.setVendor("gemini", "embed_model", getEnv("GEMINI_EMBED_MODEL", ""))

	return cfg
}

// Vendor returns a setting for the named vendor, or "" when unset.
func (c *Config) Vendor(name, key string) string {
	if c == nil || c.VendorSettings == nil {
		return ""
	}
	if vs, ok := c.VendorSettings[name]; ok {
		return vs[key]
	}
	return ""
}

func (c *Config) setVendor(name, key, val string) {
	if val == "" {
		return
	}
	if c.VendorSettings == nil {
		c.VendorSettings = make(map[string]map[string]string)
	}
	if _, ok := c.VendorSettings[name]; !ok {
		c.VendorSettings[name] = make(map[string]string)
	}
	c.VendorSettings[name][key] = val
}

func getEnv(key, def string) string {
	v := ""
	if val, ok := lookupEnv(key); ok {
		v = val
	} else {
		// fallback to .env file if present
		loadDotEnvOnce.Do(loadDotEnv)
		if dotEnv != nil {
			if val2, ok := dotEnv[key]; ok && val2 != "" {
				v = val2
			}
		}
	}
	if v == "" {
		return def
	}
	return v
}

// lookupEnv is a thin wrapper over os.LookupEnv so tests can replace it if needed.
var lookupEnv = func(key string) (string, bool) { return os.LookupEnv(key) }

var (
	dotEnv         map[string]string
	loadDotEnvOnce sync.Once
)

// loadDotEnv loads a .env file from the repository root (current working dir)
// and populates the dotEnv map. It ignores lines starting with '#' and empty lines.
func loadDotEnv() {
	// look for .env in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	path := filepath.Join(cwd, ".env")
	data, err := os.ReadFile(path)
	if err != nil {
		// no .env present - nothing to do
		return
	}

	m := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split at first '='
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:idx])
		v := strings.TrimSpace(line[idx+1:])
		// remove surrounding quotes if present
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		m[k] = v
	}
	dotEnv = m
}
