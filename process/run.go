// Package process implements the main program action: locate an HTML file,
// prune unused @font-face blocks and write results next to it.
package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"fontprune/fonts"
	"fontprune/fontuse"
	"fontprune/markup"
	"fontprune/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	dir := cmd.Args().Get(0)
	if len(dir) == 0 {
		dir = "."
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many directories", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	if env.Encoding, err = LookupEncoding(env.Cfg.Processing.Encoding); err != nil {
		return err
	}
	if env.Encoding != nil {
		log.Debug("Using input character set", zap.String("charset", env.Cfg.Processing.Encoding))
	}

	defer func(start time.Time) {
		log.Debug("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return Directory(ctx, env, dir)
}

// Directory processes the first HTML file found in dir. Absence of HTML files
// is not an error.
func Directory(ctx context.Context, env *state.LocalEnv, dir string) error {
	log := env.Log.Named("process")

	mode, err := fontuse.ParseInheritance(env.Cfg.Processing.Inheritance)
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}

	name, err := Locate(dir)
	if err != nil {
		return fmt.Errorf("unable to look for HTML files in '%s': %w", dir, err)
	}
	if len(name) == 0 {
		log.Info("No HTML file found", zap.String("directory", dir))
		return nil
	}
	log.Info("Processing HTML file", zap.String("file", name), zap.Stringer("inheritance", mode))

	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("unable to read '%s': %w", name, err)
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return fmt.Errorf("'%s' is not an HTML document (%s content detected)", name, kind.MIME.Value)
	}
	source, err := decode(data, env.Encoding)
	if err != nil {
		return fmt.Errorf("unable to decode '%s': %w", name, err)
	}
	doc, err := markup.Parse(source, log)
	if err != nil {
		return fmt.Errorf("unable to parse '%s': %w", name, err)
	}

	res := fontuse.NewProcessor(mode, log).Process(doc)
	if env.Rpt != nil {
		env.Rpt.StoreData("debug/document.txt", []byte(doc.String()))
		for i, sheet := range res.Sheets {
			env.Rpt.StoreData(fmt.Sprintf("debug/style-%d.txt", i), []byte(sheet.String()))
		}
	}

	out, err := encode(res.Output, env.Encoding)
	if err != nil {
		return fmt.Errorf("unable to encode processed document: %w", err)
	}

	// everything is ready, last chance to stop before touching the disk
	if err := ctx.Err(); err != nil {
		return err
	}

	processed, runLog := outputNames(name)
	env.Rpt.Store("input/"+filepath.Base(name), name)
	env.Rpt.Store("output/"+filepath.Base(processed), processed)
	env.Rpt.Store("output/"+filepath.Base(runLog), runLog)

	if err := os.WriteFile(processed, out, 0644); err != nil {
		return fmt.Errorf("unable to write processed document: %w", err)
	}
	if err := fontuse.AppendRunLog(runLog, time.Now(), filepath.Base(name), res.Used, res.Removed); err != nil {
		return err
	}

	log.Info("Processed HTML file",
		zap.String("output", processed),
		zap.String("log", runLog),
		zap.Int("used", res.Used.Len()),
		zap.Int("removed", res.Removed.Len()),
		zap.Int("annotated", res.Annotated))
	log.Info("Kept @font-face variants (family | weight | style)", zap.Strings("variants", variantNames(res.Kept)))
	log.Debug("Removed @font-face variants (family | weight | style)", zap.Strings("variants", variantNames(res.Removed)))
	return nil
}

// variantNames lists set sorted, "(none)" for an empty set.
func variantNames(set *fonts.Set) []string {
	sorted := set.Sorted()
	if len(sorted) == 0 {
		return []string{"(none)"}
	}
	names := make([]string, 0, len(sorted))
	for _, t := range sorted {
		names = append(names, t.String())
	}
	return names
}
