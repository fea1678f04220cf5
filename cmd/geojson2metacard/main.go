// geojson2metacard transforms GeoJSON features into metacards and prints
// them as JSON.
//
// Usage:
//
//	geojson2metacard [-config catalog.yaml] [-id ID] [-out-dir DIR] [FILE...]
//
// Features are read from the given files, or from stdin if none is given.
// Every flag can also be set with an environment variable prefixed with
// CATALOG_, e.g. CATALOG_CONFIG.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eluv-io/errors-go"
	"github.com/eluv-io/log-go"
	"github.com/peterbourgon/ff/v3"
	"github.com/spf13/afero"

	"github.com/eluv-io/catalog-go/config"
	"github.com/eluv-io/catalog-go/format/geojson"
	"github.com/eluv-io/catalog-go/util/aferoutil"
	"github.com/eluv-io/catalog-go/util/jsonutil"
)

// Options are the command line options.
type Options struct {
	ConfigFile string
	ID         string
	OutDir     string
	Files      []string
}

func main() {
	err := run(afero.NewOsFs(), os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func parseOptions(args []string) (*Options, error) {
	var opts Options
	fs := flag.NewFlagSet("geojson2metacard", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to the configuration YAML file (defaults apply if empty)")
	fs.StringVar(&opts.ID, "id", "", "Id to assign to the metacard (only with a single input)")
	fs.StringVar(&opts.OutDir, "out-dir", "", "Directory to write <input>.json files to instead of stdout")

	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("CATALOG"))
	if err != nil {
		return nil, errors.E("parseOptions", errors.K.Invalid, err)
	}
	opts.Files = fs.Args()
	if opts.ID != "" && len(opts.Files) > 1 {
		return nil, errors.E("parseOptions", errors.K.Invalid, "reason", "-id requires a single input")
	}
	return &opts, nil
}

func run(fs afero.Fs, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		cfg, err = config.Load(fs, opts.ConfigFile)
		if err != nil {
			return err
		}
	}
	lg := cfg.NewLog()
	lg.Debug("configuration loaded",
		"config", opts.ConfigFile,
		"metacard_types", cfg.TypeNames(),
		"ddms", cfg.DDMS.Enabled)

	tr, err := cfg.NewTransformer(lg)
	if err != nil {
		return err
	}

	if len(opts.Files) == 0 {
		return convert(tr, stdin, opts.ID, stdout)
	}

	for _, file := range opts.Files {
		err = convertFile(fs, tr, file, opts, stdout, lg)
		if err != nil {
			return err
		}
	}
	return nil
}

func convertFile(fs afero.Fs, tr *geojson.Transformer, file string, opts *Options, stdout io.Writer, lg *log.Log) error {
	e := errors.Template("convertFile", "file", file)

	in, err := fs.Open(file)
	if err != nil {
		return e(errors.K.IO, err)
	}
	defer func() { _ = in.Close() }()

	if opts.OutDir == "" {
		err = convert(tr, in, opts.ID, stdout)
		if err != nil {
			return e(err)
		}
		return nil
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".json"
	outPath := filepath.Join(opts.OutDir, name)
	err = aferoutil.WriteFile(fs, outPath, func(w io.Writer) error {
		return convert(tr, in, opts.ID, w)
	})
	if err != nil {
		return e(err)
	}
	lg.Info("metacard written", "file", file, "out_file", outPath)
	return nil
}

func convert(tr *geojson.Transformer, r io.Reader, id string, w io.Writer) error {
	mc, err := tr.TransformWithID(r, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, jsonutil.MarshalCompactString(mc))
	if err != nil {
		return errors.E("convert", errors.K.IO, err)
	}
	return nil
}
