package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"maqraa/internal/slots"
)

// SlotsConfig is the root of slots.yaml: the bookable catalog as deployed
// configuration. The compiled-in default catalog is used where no file is
// configured.
type SlotsConfig struct {
	Blocks []slots.TimeBlock `yaml:"blocks"`
}

// LoadSlotsConfig loads and validates the slot catalog from a YAML file.
func LoadSlotsConfig(path string) (*slots.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slots config: %w", err)
	}

	var cfg SlotsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse slots config: %w", err)
	}
	if len(cfg.Blocks) == 0 {
		return nil, fmt.Errorf("slots config %s has no blocks", path)
	}

	catalog, err := slots.NewCatalog(cfg.Blocks)
	if err != nil {
		return nil, fmt.Errorf("validate slots config: %w", err)
	}
	return catalog, nil
}

// WatchSlots reloads slots.yaml on change and calls onUpdate with the new
// catalog. It performs an initial load before entering the watch loop.
func WatchSlots(ctx context.Context, path string, interval time.Duration, onUpdate func(*slots.Catalog)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	catalog, err := LoadSlotsConfig(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(catalog)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				catalog, err := LoadSlotsConfig(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(catalog)
				}
			}
		}
	}()

	return nil
}
