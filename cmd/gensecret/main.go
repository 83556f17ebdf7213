// Command gensecret prints a random key for the sealed credential store
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/carectl/internal/repository/sealed"
)

func main() {
	if err := run(os.Args[1:], rand.Reader, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, random io.Reader, out io.Writer) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	asEnv := fs.Bool("env", false, "Print as SECRET_KEY=<key> line ready for .env")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b := make([]byte, sealed.KeyLen)
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}

	key := hex.EncodeToString(b)
	if *asEnv {
		key = "SECRET_KEY=" + key
	}

	_, err := fmt.Fprintln(out, key)
	return err
}
