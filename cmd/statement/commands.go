package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alsaadxx12/roda10-sub000/pkg/ledger"
	"github.com/alsaadxx12/roda10-sub000/pkg/logging"
	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s\n", commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseKindFlag(s string) (statement.Kind, error) {
	kind, ok := statement.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("unknown kind %q (want statement or voucher)", s)
	}
	return kind, nil
}

func runRender(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("render", stderr)
	templateFile := fs.String("template", "", "template `file` (.html or .md)")
	name := fs.String("name", "", "stored template `name`, resolved in -store")
	storeDir := fs.String("store", "templates", "template `directory` used with -name")
	dataFile := fs.String("data", "", "JSON data `file`; sample data when omitted")
	ledgerFile := fs.String("ledger", "", "JSON ledger `file` built into statement data")
	kindFlag := fs.String("kind", "statement", "template kind: statement or voucher")
	formatFlag := fs.String("format", "", "template format: html or markdown (default from file extension)")
	output := fs.String("o", "", "output `file`; stdout when omitted")
	strict := fs.Bool("strict", false, "fail when the template has warnings")
	escape := fs.Bool("escape", false, "HTML-escape substituted values")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *dataFile != "" && *ledgerFile != "" {
		fmt.Fprintln(stderr, "statement render: -data and -ledger are mutually exclusive")
		return exitUsage
	}

	kind, err := parseKindFlag(*kindFlag)
	if err != nil {
		return fail(stderr, "render", err)
	}

	source, format, err := loadSource(*templateFile, *name, *storeDir, kind)
	if err != nil {
		return fail(stderr, "render", err)
	}
	if *formatFlag != "" {
		f, ok := statement.ParseFormat(*formatFlag)
		if !ok {
			return fail(stderr, "render", fmt.Errorf("unknown format %q", *formatFlag))
		}
		format = f
	}

	data, err := loadData(kind, *dataFile, *ledgerFile)
	if err != nil {
		return fail(stderr, "render", err)
	}

	config := statement.GetGlobalConfig()
	config.StrictMode = *strict
	config.EscapeHTML = *escape
	engine := statement.NewWithOptions(
		statement.WithConfig(config),
		statement.WithLogger(logging.NewNoOpLogger()),
	)

	result, err := engine.RenderFormat(kind, source, format, data)
	if err != nil {
		for _, w := range statement.WarningsOf(err) {
			fmt.Fprintf(stderr, "warning: %s\n", w)
		}
		return fail(stderr, "render", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if *output == "" {
		io.WriteString(stdout, result.HTML)
		return exitOK
	}
	if err := os.WriteFile(*output, []byte(result.HTML), 0o644); err != nil {
		return fail(stderr, "render", err)
	}
	return exitOK
}

// loadSource reads the template from a file, a directory store, or the
// built-in default, in that order of preference.
func loadSource(file, name, dir string, kind statement.Kind) (string, statement.Format, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", "", err
		}
		return string(b), formatFromExt(file), nil
	}

	var st store.Store
	if name != "" {
		d, err := store.NewDirStore(dir)
		if err != nil {
			return "", "", err
		}
		st = d
	}
	tmpl, err := store.NewLoader(st).Load(context.Background(), name, kind)
	if err != nil {
		return "", "", err
	}
	return tmpl.Source, tmpl.Format, nil
}

func formatFromExt(path string) statement.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return statement.FormatMarkdown
	default:
		return statement.FormatHTML
	}
}

func loadData(kind statement.Kind, dataFile, ledgerFile string) (statement.TemplateData, error) {
	switch {
	case ledgerFile != "":
		b, err := os.ReadFile(ledgerFile)
		if err != nil {
			return nil, err
		}
		var in ledger.Input
		if err := json.Unmarshal(b, &in); err != nil {
			return nil, fmt.Errorf("parse ledger %s: %w", ledgerFile, err)
		}
		data, _, err := ledger.Build(in)
		if err != nil {
			return nil, err
		}
		return data.TemplateData(), nil

	case dataFile != "":
		b, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, err
		}
		var data statement.TemplateData
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("parse data %s: %w", dataFile, err)
		}
		return data, nil
	}

	if kind == statement.KindVoucher {
		return statement.SampleVoucherData().TemplateData(), nil
	}
	return statement.SampleStatementData().TemplateData(), nil
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("validate", stderr)
	kindFlag := fs.String("kind", "statement", "template kind: statement or voucher")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	kind, err := parseKindFlag(*kindFlag)
	if err != nil {
		return fail(stderr, "validate", err)
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fail(stderr, "validate", err)
	}

	result := statement.Validate(string(b), kind)
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fail(stderr, "validate", err)
		}
	} else {
		for _, w := range result.Warnings {
			fmt.Fprintf(stdout, "%s: %s\n", fs.Arg(0), w)
		}
		fmt.Fprintf(stdout, "%d directives checked, %d warnings\n", result.Summary.CheckedDirectives, result.Summary.WarningCount)
	}

	if !result.Valid {
		return exitFailure
	}
	return exitOK
}

func runVars(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("vars", stderr)
	kindFlag := fs.String("kind", "statement", "template kind: statement or voucher")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	kind, err := parseKindFlag(*kindFlag)
	if err != nil {
		return fail(stderr, "vars", err)
	}

	if fs.NArg() > 0 {
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			return fail(stderr, "vars", err)
		}
		for _, path := range statement.Validate(string(b), kind).Variables {
			fmt.Fprintln(stdout, path)
		}
		return exitOK
	}

	for _, group := range statement.CatalogueFor(kind) {
		fmt.Fprintf(stdout, "%s\n", group.Name)
		for _, e := range group.Entries {
			fmt.Fprintf(stdout, "  %-28s %s\n", e.Snippet, e.Label)
		}
	}
	return exitOK
}

func runSample(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("sample", stderr)
	kindFlag := fs.String("kind", "statement", "template kind: statement or voucher")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	kind, err := parseKindFlag(*kindFlag)
	if err != nil {
		return fail(stderr, "sample", err)
	}

	var v interface{} = statement.SampleStatementData()
	if kind == statement.KindVoucher {
		v = statement.SampleVoucherData()
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail(stderr, "sample", err)
	}
	return exitOK
}
