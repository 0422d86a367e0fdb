package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/Shayhha/FileShredder/key"
	"github.com/Shayhha/FileShredder/shred"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) wipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe <file>...",
		Short: "Overwrite files with random bytes",
		Long:  `Overwrites every file with pseudo-random bytes for the configured number of passes and optionally deletes it afterwards.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := c.load()
			if err != nil {
				return err
			}

			s, stop := interruptible()
			defer stop()

			e := shred.New(conf.EngineOptions()...)
			return c.each(s, args, func(f *shred.File) (shred.Result, error) {
				return e.Wipe(s, f, conf.Wipe.Passes, conf.Wipe.Remove)
			})
		},
	}

	flags := cmd.Flags()
	flags.Int("passes", 0, "Number of overwrite passes")
	flags.Bool("remove", false, "Delete each file after a successful wipe")
	c.bind("wipe.passes", flags.Lookup("passes"))
	c.bind("wipe.remove", flags.Lookup("remove"))

	return cmd
}

func (c *cli) cipherCmd(dir shred.Direction) *cobra.Command {
	use, short := "encrypt", "Encrypt files in place"
	if dir == shred.Decrypt {
		use, short = "decrypt", "Decrypt files in place"
	}

	var keyHex string
	cmd := &cobra.Command{
		Use:   use + " <file>...",
		Short: short,
		Long:  fmt.Sprintf(`%s with AES in a length preserving mode. The key is read from --key or prompted for when omitted.`, short),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// encrypt and decrypt each own a --mode flag, so the key is bound
			// to the one that is running.
			c.bind("cipher.mode", cmd.Flags().Lookup("mode"))
			conf, err := c.load()
			if err != nil {
				return err
			}
			k, err := c.readKey(keyHex)
			if err != nil {
				return err
			}
			defer key.Release(k)

			s, stop := interruptible()
			defer stop()

			e := shred.New(conf.EngineOptions()...)
			return c.each(s, args, func(f *shred.File) (shred.Result, error) {
				return e.Process(s, f, k, conf.Cipher.Mode, dir)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&keyHex, "key", "", "Hex encoded AES key (16, 24 or 32 bytes)")
	flags.String("mode", "", "Cipher mode (ctr, ofb, cfb)")

	return cmd
}

func (c *cli) keygenCmd() *cobra.Command {
	var bits int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random hex encoded AES key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch bits {
			case 128, 192, 256:
			default:
				return errors.Errorf("invalid key size %d, use 128, 192 or 256", bits)
			}

			k := key.Generate(bits)
			defer key.Release(k)

			_, err := fmt.Fprintln(c.stdout, hex.EncodeToString(k.GetBytes()))
			return err
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 256, "Key size in bits")

	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := c.load()
			if err != nil {
				return err
			}
			out, err := conf.YAML()
			if err != nil {
				return err
			}
			_, err = c.stdout.Write(out)
			return err
		},
	}
}

// readKey decodes the hex key given on the command line or, when empty, the
// one typed at the prompt. Terminal input is not echoed.
func (c *cli) readKey(keyHex string) (key.Key, error) {
	raw := []byte(keyHex)
	if keyHex == "" {
		var err error
		if raw, err = c.promptKey(); err != nil {
			return nil, err
		}
	}
	defer key.Scrub(raw)

	raw = bytes.TrimSpace(raw)
	b := make([]byte, hex.DecodedLen(len(raw)))
	defer key.Scrub(b)
	if _, err := hex.Decode(b, raw); err != nil {
		return nil, errors.Wrap(err, "key must be hex encoded")
	}
	return key.New(b)
}

func (c *cli) promptKey() ([]byte, error) {
	if f, ok := c.stdin.(*os.File); ok && c.isTerminal(int(f.Fd())) {
		fmt.Fprint(c.stderr, "Key (hex): ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return nil, errors.Wrap(err, "reading key")
		}
		return b, nil
	}

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if line == "" && err != nil {
		return nil, errors.Wrap(err, "reading key from stdin")
	}
	return []byte(line), nil
}
