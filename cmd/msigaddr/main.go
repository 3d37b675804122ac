package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/mr-tron/base58"
)

// nolint
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer) error {
	fl := flag.NewFlagSet("msigaddr", flag.ContinueOnError)
	programFl := fl.String("program", multisig.DefaultProgramID.Base58(), "Base58 encoded program ID the addresses are derived for.")
	treeFl := fl.String("tree", compress.DefaultTreeID().Base58(), "Base58 encoded address tree of compressed multisigs.")
	headerFl := fl.Bool("header", true, "Display header")
	hexFl := fl.Bool("hex", false, "Print addresses in hex instead of base58.")
	fl.Usage = func() {
		fmt.Fprintf(fl.Output(), `Usage:
	msigaddr [options] <create key> [<create key> ...]

Print the addresses of the multisigs created with given create keys. For every
key the address of the multisig account, its bump and the address of the
compressed multisig are printed.

Create keys are base58 encoded by default. Any format prefix understood by the
genesis file (hex:, base58:, bech32:, cond:) can be used as well.

`)
		fl.PrintDefaults()
	}
	if err := fl.Parse(args); err != nil {
		return err
	}
	if fl.NArg() == 0 {
		return fmt.Errorf("at least one create key is required")
	}

	programID, err := decodeBase58(*programFl)
	if err != nil {
		return fmt.Errorf("program: %s", err)
	}
	tree, err := decodeBase58(*treeFl)
	if err != nil {
		return fmt.Errorf("tree: %s", err)
	}
	keys := make([]quorum.Address, 0, fl.NArg())
	for _, arg := range fl.Args() {
		key, err := parseKey(arg)
		if err != nil {
			return fmt.Errorf("create key %q: %s", arg, err)
		}
		keys = append(keys, key)
	}

	format := quorum.Address.Base58
	if *hexFl {
		format = quorum.Address.String
	}
	return printAddresses(out, programID, tree, keys, format, *headerFl)
}

func printAddresses(out io.Writer, programID, tree quorum.Address, keys []quorum.Address, format func(quorum.Address) string, header bool) error {
	w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	if header {
		fmt.Fprintln(w, "create key\tmultisig\tbump\tcompressed")
	}
	for _, key := range keys {
		addr, bump, err := multisig.DeriveAddress(programID, key)
		if err != nil {
			return err
		}
		compressed, err := multisig.DeriveCompressedAddress(programID, key, tree)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", format(key), format(addr), bump, format(compressed))
	}
	return w.Flush()
}

// parseKey decodes a create key. Keys without a format prefix are base58.
func parseKey(s string) (quorum.Address, error) {
	if !strings.Contains(s, ":") {
		return decodeBase58(s)
	}
	key, err := quorum.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return key, key.Validate()
}

func decodeBase58(s string) (quorum.Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, err
	}
	addr := quorum.Address(raw)
	return addr, addr.Validate()
}
