// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler.
//
// Handles "fiscus config" subcommands:
//   list                all keys with their current values
//   get <key>           one value (dot notation, e.g. ui.theme)
//   set <key> <waarde>  update and persist a value
//   path                location of the config file
package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/fiscus-tui/internal/config"
	"github.com/jeranaias/fiscus-tui/internal/ui/styles"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args *ArgParser) error {
	switch args.Subcommand() {
	case "", "list":
		return configList()
	case "get":
		return configGet(args.Positional(1))
	case "set":
		return configSet(args.Positional(1), JoinPositionalArgs(args, 2))
	case "path":
		return configPath()
	default:
		return fmt.Errorf("onbekend subcommando: %s", args.Subcommand())
	}
}

func configList() error {
	cfg := config.Global()
	for _, key := range config.GetAllKeys() {
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}
		if key == "backend.api_key" && val != "" {
			val = "***"
		}
		fmt.Printf("%-32s %v\n", key, val)
	}
	return nil
}

func configGet(key string) error {
	if key == "" {
		return fmt.Errorf("gebruik: fiscus config get <key>")
	}
	val, err := config.Global().Get(key)
	if err != nil {
		return fmt.Errorf("onbekende sleutel %q (zie: fiscus config list)", key)
	}
	fmt.Printf("%v\n", val)
	return nil
}

func configSet(key, value string) error {
	if key == "" || strings.TrimSpace(value) == "" {
		return fmt.Errorf("gebruik: fiscus config set <key> <waarde>")
	}

	cfg := config.Global()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ongeldige waarde: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("opslaan mislukt: %w", err)
	}

	fmt.Println(styles.RenderSuccess(key + " bijgewerkt"))
	return nil
}

func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
