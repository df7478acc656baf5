package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bodgit/sha1sum"
	"github.com/c2h5oh/datasize"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/goccy/go-json"
	"github.com/markkurossi/tabulate"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var stdin io.Reader = os.Stdin

func init() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case "nop":
		return zap.NewNop(), nil
	case "dev":
		return zap.NewDevelopment()
	case "prod":
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unsupported environment %q", env)
	}
}

func newHasher(c *cli.Context) (*sha1sum.Hasher, *zap.Logger, error) {
	logger, err := newLogger(c.GlobalString("environment"))
	if err != nil {
		return nil, nil, err
	}

	var chunkSize datasize.ByteSize
	if err := chunkSize.UnmarshalText([]byte(c.GlobalString("chunk-size"))); err != nil {
		return nil, nil, fmt.Errorf("chunk size: %w", err)
	}

	h, err := sha1sum.NewHasher(osfs.New(""), logger, sha1sum.WithChunkSize(int(chunkSize.Bytes())))
	if err != nil {
		return nil, nil, err
	}

	return h, logger, nil
}

func sum(c *cli.Context) error {
	h, logger, err := newHasher(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer logger.Sync()

	files := c.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	failed := false
	for _, file := range files {
		if file == "-" {
			d := sha1sum.New()
			if _, err := io.Copy(d, stdin); err != nil {
				return cli.NewExitError(err, 1)
			}
			fmt.Fprintf(c.App.Writer, "%x  -\n", d.Sum(nil))
			continue
		}

		digest := h.HashFile(file)
		if digest == "" {
			failed = true
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s  %s\n", digest, file)
	}

	if failed {
		return cli.NewExitError("", 1)
	}

	return nil
}

func hashString(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	for _, s := range c.Args() {
		fmt.Fprintf(c.App.Writer, "%s  %q\n", sha1sum.HashBytes([]byte(s)), s)
	}

	return nil
}

func printResults(w io.Writer, results []sha1sum.Result, asJSON, known bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Path").SetAlign(tabulate.ML)
	tab.Header("Size").SetAlign(tabulate.MR)
	tab.Header("SHA1").SetAlign(tabulate.ML)
	if known {
		tab.Header("Known").SetAlign(tabulate.MC)
	}

	var total uint64
	for _, r := range results {
		row := tab.Row()
		row.Column(r.Name())
		row.Column(datasize.ByteSize(r.Size).HumanReadable())
		row.Column(r.SHA1)
		if known {
			if r.Known {
				row.Column("✓")
			} else {
				row.Column("")
			}
		}
		total += r.Size
	}

	row := tab.Row()
	row.Column(fmt.Sprintf("Total (%d)", len(results))).SetFormat(tabulate.FmtBold)
	row.Column(datasize.ByteSize(total).HumanReadable()).SetFormat(tabulate.FmtBold)

	tab.Print(w)

	return nil
}

func pipeline(c *cli.Context, h *sha1sum.Hasher, m *sha1sum.Manifest, dirs []string) ([]sha1sum.Result, error) {
	filter, err := sha1sum.NewExclude(c.StringSlice("exclude")...)
	if err != nil {
		return nil, err
	}

	return h.Pipeline(m, dirs, filter, c.Int("workers"))
}

func scan(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	h, logger, err := newHasher(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer logger.Sync()

	results, err := pipeline(c, h, nil, c.Args())
	if perr := printResults(c.App.Writer, results, c.Bool("json"), false); perr != nil {
		return cli.NewExitError(perr, 1)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func manifest(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	h, logger, err := newHasher(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer logger.Sync()

	results, err := pipeline(c, h, nil, c.Args())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	b, err := sha1sum.GenerateManifest(results)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if _, err := c.App.Writer.Write(b); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func check(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	h, logger, err := newHasher(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer logger.Sync()

	b, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := sha1sum.NewManifest(b)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer m.Free()

	results, err := pipeline(c, h, m, c.Args().Tail())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if c.Bool("verbose") {
		if err := printResults(c.App.Writer, results, false, true); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	remaining, err := m.Remaining()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if remaining > 0 {
		b, err := m.Marshal()
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		if _, err := c.App.Writer.Write(b); err != nil {
			return cli.NewExitError(err, 1)
		}

		return cli.NewExitError("", 2)
	}

	return nil
}

func merge(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := sha1sum.NewManifest(b)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer m.Free()

	for _, file := range c.Args().Tail() {
		b, err := os.ReadFile(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		if err := m.Merge(b); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	b, err = m.Marshal()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if _, err := c.App.Writer.Write(b); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func repack(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	h, logger, err := newHasher(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer logger.Sync()

	for _, file := range c.Args() {
		s, _, err := h.Repack(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintf(c.App.Writer, "%s  %s\n", s, file)
	}

	return nil
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "sha1sum"
	app.Usage = "SHA-1 checksum utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "chunk-size",
			Value:  "4KB",
			Usage:  "size of each read when hashing a file, a multiple of 64 bytes",
			EnvVar: "SHA1SUM_CHUNK_SIZE",
		},
		cli.StringFlag{
			Name:   "environment, e",
			Value:  "prod",
			Usage:  "logging environment: nop, dev or prod",
			EnvVar: "SHA1SUM_ENVIRONMENT",
		},
	}

	pipelineFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "workers, w",
			Value: 10,
			Usage: "number of files to hash concurrently",
		},
		cli.StringSliceFlag{
			Name:  "exclude, x",
			Usage: "skip paths matching the glob `PATTERN`",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "sum",
			Usage:     "Print the SHA-1 digest of each file, or standard input",
			ArgsUsage: "[FILE...]",
			Action:    sum,
		},
		{
			Name:      "string",
			Usage:     "Print the SHA-1 digest of each argument",
			ArgsUsage: "TEXT...",
			Action:    hashString,
		},
		{
			Name:      "scan",
			Usage:     "Hash every file in one or more directories, including zip members",
			ArgsUsage: "DIRECTORY...",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print results as JSON",
				},
			}, pipelineFlags...),
			Action: scan,
		},
		{
			Name:      "manifest",
			Usage:     "Create an XML manifest from the contents of one or more directories",
			ArgsUsage: "DIRECTORY...",
			Flags:     pipelineFlags,
			Action:    manifest,
		},
		{
			Name:        "check",
			Usage:       "Verify the contents of one or more directories against an XML manifest",
			Description: "Any manifest entries that were not found are printed and the exit status is 2",
			ArgsUsage:   "MANIFEST DIRECTORY...",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "verbose, v",
					Usage: "print every file hashed",
				},
			}, pipelineFlags...),
			Action: check,
		},
		{
			Name:      "merge",
			Usage:     "Merge multiple XML manifests together",
			ArgsUsage: "FILE...",
			Action:    merge,
		},
		{
			Name:      "repack",
			Usage:     "Rewrite zip archives as TorrentZips and print their new digest",
			ArgsUsage: "ZIP...",
			Action:    repack,
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
