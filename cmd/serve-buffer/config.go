package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	servebuffer "github.com/always-cache/serve-buffer"
	headerrules "github.com/always-cache/serve-buffer/pkg/header-rules"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Key namespace in the store. Defaults to "serve-buffer".
	Namespace string           `yaml:"namespace"`
	Defaults  ConfigDefaults   `yaml:"defaults"`
	Resources []ConfigResource `yaml:"resources"`
	// Header rules applied to responses, first match wins.
	Rules headerrules.Rules `yaml:"rules"`
}

// ConfigDefaults are the serving options for all resources.
type ConfigDefaults struct {
	Gzip             bool          `yaml:"gzip"`
	GzipMaxSize      int           `yaml:"gzipMaxSize"`
	Brotli           bool          `yaml:"brotli"`
	BrotliMaxSize    int           `yaml:"brotliMaxSize"`
	MaxAge           time.Duration `yaml:"maxAge"`
	Immutable        bool          `yaml:"immutable"`
	NoCacheControl   bool          `yaml:"noCacheControl"`
	UnmutatedBuffers bool          `yaml:"unmutatedBuffers"`
}

// ConfigResource is a resource loaded into the store at startup,
// either inline (content) or from a file relative to the config file.
type ConfigResource struct {
	Path        string        `yaml:"path"`
	ContentType string        `yaml:"contentType"`
	Content     string        `yaml:"content"`
	File        string        `yaml:"file"`
	MaxAge      time.Duration `yaml:"maxAge"`
	Immutable   bool          `yaml:"immutable"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	if err != nil {
		return config, err
	}
	for i, res := range config.Resources {
		if res.Path == "" {
			return config, fmt.Errorf("resource %d has no path", i)
		}
		if res.Content != "" && res.File != "" {
			return config, fmt.Errorf("resource %s has both content and file", res.Path)
		}
		if res.File != "" && !filepath.IsAbs(res.File) {
			config.Resources[i].File = filepath.Join(filepath.Dir(filename), res.File)
		}
	}
	return config, nil
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return "serve-buffer"
	}
	return c.Namespace
}

func (d ConfigDefaults) options() servebuffer.Options {
	return servebuffer.Options{
		Gzip:             d.Gzip,
		GzipMaxSize:      d.GzipMaxSize,
		Brotli:           d.Brotli,
		BrotliMaxSize:    d.BrotliMaxSize,
		MaxAge:           d.MaxAge,
		Immutable:        d.Immutable,
		NoCacheControl:   d.NoCacheControl,
		UnmutatedBuffers: d.UnmutatedBuffers,
	}
}

func (r ConfigResource) bytes() ([]byte, error) {
	if r.File != "" {
		return os.ReadFile(r.File)
	}
	return []byte(r.Content), nil
}
