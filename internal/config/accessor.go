package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sanitize returns a copy of the config with secrets masked.
func Sanitize(cfg *Config) *Config {
	c := *cfg
	if c.Telegram.Token != "" {
		c.Telegram.Token = maskString(c.Telegram.Token)
	}
	if c.Telegram.WebhookSecret != "" {
		c.Telegram.WebhookSecret = "***"
	}
	return &c
}

// maskString shows first 4 and last 4 chars, masks the rest.
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// GetByPath retrieves a config value by dot-notation path (e.g. "server.port").
func GetByPath(cfg *Config, path string) (any, error) {
	m, err := toMap(cfg)
	if err != nil {
		return nil, err
	}

	var current any = m
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot traverse into %T at %s", current, key)
		}
		val, ok := node[key]
		if !ok {
			return nil, fmt.Errorf("key not found: %s", path)
		}
		current = val
	}
	return current, nil
}

// ListPaths returns every leaf path in sorted order.
func ListPaths(cfg *Config) []string {
	m, err := toMap(cfg)
	if err != nil {
		return nil
	}
	var paths []string
	flatten("", m, &paths)
	sort.Strings(paths)
	return paths
}

func flatten(prefix string, m map[string]any, out *[]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(key, child, out)
			continue
		}
		*out = append(*out, key)
	}
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
