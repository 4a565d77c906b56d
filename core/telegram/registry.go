package telegram

import (
	"context"
	"sort"
	"strings"

	"github.com/kagace/melobot/core/logger"
	"github.com/kagace/melobot/core/telegram/commands"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands, reply-keyboard selection labels, and the
// fallback handler for unmatched text.
type Registry struct {
	commands     map[string]commands.Command
	labels       map[string]tele.HandlerFunc
	labelOrder   []string
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		labels:   make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a new command.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// RegisterLabel maps a fixed selection label to its handler. Labels are
// matched case-insensitively against inbound free text.
func (r *Registry) RegisterLabel(label string, h tele.HandlerFunc) {
	key := strings.ToLower(strings.TrimSpace(label))
	if r == nil || key == "" || h == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.label.skip",
			slog.String("label", label),
		)
		return
	}
	if _, exists := r.labels[key]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.label.duplicate",
			slog.String("label", label),
		)
		return
	}
	r.labels[key] = h
	r.labelOrder = append(r.labelOrder, key)
}

// LookupLabel resolves free text to a selection-label handler, ignoring case
// and surrounding whitespace.
func (r *Registry) LookupLabel(text string) (string, tele.HandlerFunc, bool) {
	key := strings.ToLower(strings.TrimSpace(text))
	if h, ok := r.labels[key]; ok {
		return key, h, true
	}
	return "", nil, false
}

// ListLabels returns registered labels in registration order.
func (r *Registry) ListLabels() []string {
	return append([]string(nil), r.labelOrder...)
}

// ListCommands returns a slice of tele.Command, optionally filtering out hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: cmd, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand searches for a command by name or its aliases and returns the canonical key with metadata if found.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets a global fallback handler for unmatched text messages.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	commands := reg.ListCommands(true)
	if err := bot.SetCommands(commands); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
