// Command shredder encrypts, decrypts and securely wipes files in place.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shayhha/FileShredder/internal/config"
	"github.com/Shayhha/FileShredder/internal/flogging"
	"github.com/Shayhha/FileShredder/shred"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var logger = flogging.MustGetLogger("shredder")

// cli holds everything a command touches outside its arguments.
type cli struct {
	fs     afero.Fs
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether fd is attached to a terminal. It decides
	// whether progress bars are drawn and whether the key prompt hides input.
	isTerminal func(fd int) bool

	configFile string
}

func newCLI() *cli {
	return &cli{
		fs:         afero.NewOsFs(),
		v:          config.New(),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: term.IsTerminal,
	}
}

// The root command describes the tool and defaults to printing the help
// message.
func (c *cli) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shredder",
		Short:         "Encrypt, decrypt or securely wipe files in place",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.v.SetFs(c.fs)
	cmd.SetIn(c.stdin)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Path to a YAML config file")
	flags.String("log-level", "", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "", "Logging format (console, json, logfmt)")
	flags.Int("chunk-size", 0, "Bytes transformed per chunk")
	flags.String("strategy", "", "Chunk scheduling strategy (sequential, pipelined)")
	c.bind("logging.level", flags.Lookup("log-level"))
	c.bind("logging.format", flags.Lookup("log-format"))
	c.bind("engine.chunkSize", flags.Lookup("chunk-size"))
	c.bind("engine.strategy", flags.Lookup("strategy"))

	cmd.AddCommand(c.wipeCmd())
	cmd.AddCommand(c.cipherCmd(shred.Encrypt))
	cmd.AddCommand(c.cipherCmd(shred.Decrypt))
	cmd.AddCommand(c.keygenCmd())
	cmd.AddCommand(c.configCmd())

	return cmd
}

// bind makes a command line flag override the config file and environment.
func (c *cli) bind(key string, flag *pflag.Flag) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// load reads the merged configuration and applies its logging section.
func (c *cli) load() (config.Config, error) {
	conf, err := config.Load(c.v, c.configFile)
	if err != nil {
		return config.Config{}, err
	}
	err = flogging.Init(flogging.Config{
		Level:  conf.Logging.Level,
		Format: conf.Logging.Format,
		Writer: c.stderr,
	})
	if err != nil {
		return config.Config{}, err
	}
	return conf, nil
}

// interruptible returns a session that is canceled on SIGINT or SIGTERM. The
// returned function stops listening for signals.
func interruptible() (*shred.Session, func()) {
	s := shred.NewSession()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			logger.Warn("interrupted, stopping at the next chunk")
			s.Cancel()
		case <-done:
		}
	}()

	return s, func() {
		close(done)
		stop()
	}
}

// each opens every path and hands it to op, stopping early once the session
// is canceled. It fails when any file could not be opened or processed.
func (c *cli) each(s *shred.Session, paths []string, op func(*shred.File) (shred.Result, error)) error {
	var failed, canceled int
	for _, path := range paths {
		if s.Canceled() {
			canceled++
			continue
		}

		f, err := shred.Open(c.fs, path, &shred.LogObserver{Logger: logger})
		if err != nil {
			logger.Errorw("skipping file", "path", path, "error", err)
			failed++
			continue
		}
		if bar := c.progressBar(f); bar != nil {
			f.AddObserver(bar)
		}

		r, err := op(f)
		if err != nil {
			return err
		}
		switch r.Outcome {
		case shred.Failed:
			failed++
		case shred.Canceled:
			canceled++
		}
	}

	switch {
	case failed > 0:
		return errors.Errorf("%d of %d files failed", failed, len(paths))
	case canceled > 0:
		return errors.Errorf("canceled, %d of %d files not fully processed", canceled, len(paths))
	}
	return nil
}
