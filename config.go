package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"sprintrace/pkg/resources"
)

type config struct {
	dbPath       string
	resourcesDir string
	publicURL    string
	token        string
	chatIDs      []int64
	seed         *int64
	console      bool
}

type getenv func(string) string

func loadConfig(env getenv) (config, error) {
	cfg := config{
		dbPath:       env("SPRINTRACE_DB"),
		resourcesDir: env("SPRINTRACE_RESOURCES"),
		publicURL:    env("SPRINTRACE_PUBLIC_URL"),
		token:        env("TELEGRAM_TOKEN"),
		console:      env("SPRINTRACE_CONSOLE") != "",
	}
	if cfg.resourcesDir == "" {
		cfg.resourcesDir = resources.ResourcesDir
	}

	for _, raw := range strings.Split(env("TELEGRAM_CHAT_ID"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, errors.Wrapf(err, "parsing TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.chatIDs = append(cfg.chatIDs, id)
	}

	if raw := env("SPRINTRACE_SEED"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, errors.Wrapf(err, "parsing SPRINTRACE_SEED %q", raw)
		}
		cfg.seed = &seed
	}
	return cfg, nil
}

// liveURL is where players drive; addr is the webserver listen address.
func (c config) liveURL(addr string) string {
	if c.publicURL != "" {
		return strings.TrimRight(c.publicURL, "/") + "/live"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/live"
}
