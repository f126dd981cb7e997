// Command statement renders, validates and serves account statement
// templates.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command is a subcommand. run receives the arguments after the command name.
type command struct {
	usage string
	help  string
	run   func(args []string, stdout, stderr io.Writer) int
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"render": {
			usage: "statement render [-template file | -name n -store dir] [-data file | -ledger file] [-kind k] [-format f] [-o file]",
			help:  "Render a template to a standalone HTML document.",
			run:   runRender,
		},
		"validate": {
			usage: "statement validate [-kind k] [-json] <file>",
			help:  "Report malformed directives and unknown variables.",
			run:   runValidate,
		},
		"vars": {
			usage: "statement vars [-kind k] [file]",
			help:  "List the variables a template uses, or the catalogue of a kind.",
			run:   runVars,
		},
		"sample": {
			usage: "statement sample [-kind k]",
			help:  "Print the sample data of a kind as JSON.",
			run:   runSample,
		},
		"serve": {
			usage: "statement serve [-config file] [-addr address]",
			help:  "Start the preview HTTP server.",
			run:   runServe,
		},
		"version": {
			usage: "statement version",
			help:  "Print the version.",
			run: func(args []string, stdout, stderr io.Writer) int {
				fmt.Fprintf(stdout, "statement version %s\n", version)
				return exitOK
			},
		},
		"help": {
			usage: "statement help [command]",
			help:  "Show help for a command.",
			run:   runHelp,
		},
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "statement %s: unknown command\nRun 'statement help' for usage.\n", args[0])
		return exitUsage
	}
	return cmd.run(args[1:], stdout, stderr)
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("statement renders account statement and voucher templates\n\n")
	b.WriteString("Usage:\n\n\tstatement <command> [arguments]\n\nThe commands are:\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\t%-10s %s\n", name, commands[name].help)
	}
	b.WriteString("\nUse \"statement help <command>\" for more information about a command.\n")
	io.WriteString(w, b.String())
}

func runHelp(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return exitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "statement help %s: unknown command\n", args[0])
		return exitUsage
	}
	fmt.Fprintf(stdout, "usage: %s\n\n%s\n", cmd.usage, cmd.help)
	return exitOK
}

// fail prints an error prefixed with the command name.
func fail(stderr io.Writer, name string, err error) int {
	fmt.Fprintf(stderr, "statement %s: %v\n", name, err)
	return exitFailure
}
