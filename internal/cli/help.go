package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(CanvasOrange).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(SlateGray).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(CanvasOrange).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(CanvasYellow).
			Bold(true)

	helpCommandStyle = lipgloss.NewStyle().
				Foreground(CanvasRed).
				Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(SlateGray).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Model.Node
		if selected := ctx.Selected(); selected != nil {
			node = selected
		}

		sb.WriteString(helpTitleStyle.Render(appName))
		sb.WriteString("\n")
		desc := node.Help
		if desc == "" {
			desc = ctx.Model.Help
		}
		if desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usageLine(ctx, node))
		sb.WriteString("\n")

		if cmds := getCommands(node); len(cmds) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Commands:"))
			sb.WriteString("\n")
			for _, c := range cmds {
				sb.WriteString("  ")
				sb.WriteString(helpCommandStyle.Render(fmt.Sprintf("%-10s", c.name)))
				if c.help != "" {
					sb.WriteString("  ")
					sb.WriteString(c.help)
				}
				sb.WriteString("\n")
			}
		}

		if flags := getFlags(node); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, flag := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(flag.flags))
				if flag.help != "" {
					sb.WriteString("  ")
					sb.WriteString(flag.help)
				}
				if flag.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
}

type command struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

func usageLine(ctx *kong.Context, node *kong.Node) string {
	if node == ctx.Model.Node {
		return fmt.Sprintf("%s <command> [flags]", ctx.Model.Name)
	}
	return fmt.Sprintf("%s %s [flags]", ctx.Model.Name, node.Name)
}

func getCommands(node *kong.Node) []command {
	var cmds []command
	for _, child := range node.Children {
		if child.Type != kong.CommandNode || child.Hidden {
			continue
		}
		cmds = append(cmds, command{name: child.Name, help: child.Help})
	}
	return cmds
}

func getFlags(node *kong.Node) []flag {
	flags := []flag{{
		flags: "-h, --help",
		help:  "Show context-sensitive help.",
	}}

	for _, group := range node.AllFlags(true) {
		for _, f := range group {
			if f.Name == "help" {
				continue
			}

			flagStr := fmt.Sprintf("--%s", f.Name)
			if f.Short != 0 {
				flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
			}
			if !f.IsBool() && f.PlaceHolder != "" {
				flagStr += "=" + strings.ToUpper(f.PlaceHolder)
			}

			defaultVal := ""
			if f.HasDefault && !f.IsBool() && f.Default != "" {
				defaultVal = f.Default
			}

			flags = append(flags, flag{
				flags:      flagStr,
				help:       f.Help,
				defaultVal: defaultVal,
			})
		}
	}
	return flags
}
