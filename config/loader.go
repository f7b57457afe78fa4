package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix marks environment variables read into the configuration.
const EnvPrefix = "JSONFLOW_"

var defaultConfigFiles = []string{
	"./jsonflow.yml",
	"./jsonflow.yaml",
	"./config.yml",
	"./config/config.yml",
}

// Load resolves a PipelineConfig from path (optional), .env, the environment
// and overrides, then applies defaults and validates it.
func Load(path string, overrides Overrides) (PipelineConfig, error) {
	var cfg PipelineConfig

	if path == "" {
		path = findConfigFile()
	} else if !exists(path) {
		return cfg, wrapConfigError("config file not found: "+path, os.ErrNotExist)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, wrapConfigError("read config file "+path, err)
		}
	}

	if envFile := findEnvFile(path); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, wrapConfigError("load env file "+envFile, err)
		}
	}
	bindPrefixedEnv(v, os.Environ())

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, wrapConfigError("decode config", err)
	}

	if cfg.APIKey == "" && (cfg.Dialect == "" || cfg.Dialect == DialectOpenAI) {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	overrides.Apply(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func findConfigFile() string {
	for _, p := range defaultConfigFiles {
		if exists(p) {
			return p
		}
	}
	return ""
}

// findEnvFile prefers a .env beside the config file, then the working directory.
func findEnvFile(configPath string) string {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	for _, p := range candidates {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// bindPrefixedEnv sets every nested-key variant of each JSONFLOW_* variable,
// so JSONFLOW_RETRY_MAX_RETRIES reaches retry.max_retries.
func bindPrefixedEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(strings.TrimPrefix(key, EnvPrefix)) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	API_KEY -> [api_key, api.key]
//	RETRY_MAX_RETRIES -> [retry_max_retries, retry.max.retries, retry.max_retries, retry_max.retries]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Dot after the first i segments, underscores after.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	// Underscores before the last segment, dot before it.
	if len(parts) >= 3 {
		prefix := strings.Join(parts[:len(parts)-1], "_")
		variants = append(variants, prefix+"."+parts[len(parts)-1])
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
