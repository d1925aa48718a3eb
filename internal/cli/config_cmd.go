package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirbrooks/todolist/internal/config"
)

func (a *app) cmdConfig(args []string) int {
	if len(args) == 0 {
		return a.configShow()
	}
	switch args[0] {
	case "show":
		if len(args) > 1 {
			return a.usage("config show")
		}
		return a.configShow()
	case "set":
		if len(args) < 3 {
			return a.usage("config set <key> <value>")
		}
		return a.configSet(args[1], strings.Join(args[2:], " "))
	default:
		return a.usage("config show | config set <key> <value>")
	}
}

func (a *app) configShow() int {
	status := ""
	if !a.cfg.Exists {
		status = " (not found; defaults shown)"
	}
	fmt.Fprintln(a.stdout, "Config")
	fmt.Fprintf(a.stdout, "  Config file: %s%s\n", a.cfg.Path, status)
	for _, key := range config.Keys {
		v, _ := a.cfg.Get(key)
		if v == "" {
			v = "(unset)"
		}
		fmt.Fprintf(a.stdout, "  %s: %s\n", key, v)
	}
	return ExitOK
}

// configSet only persists what the file already holds plus the new key, so
// env and flag overrides never leak into the file.
func (a *app) configSet(key, value string) int {
	cfg, err := config.ReadFile(a.cfg.Path)
	if err != nil {
		return a.fail("config", err)
	}
	if err := cfg.Set(key, value); err != nil {
		fmt.Fprintln(a.stderr, "config:", err)
		if errors.Is(err, config.ErrUnknownKey) {
			fmt.Fprintf(a.stderr, "Valid keys: %s\n", strings.Join(config.Keys, ", "))
		}
		return ExitUsage
	}
	if err := config.Save(a.cfg.Path, cfg); err != nil {
		return a.fail("config", err)
	}
	a.logger.Debug("config updated", "path", a.cfg.Path, "key", key)
	fmt.Fprintf(a.stdout, "Updated %s\n", strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_"))
	return ExitOK
}
