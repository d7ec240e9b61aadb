// Command tile inspects and serves content-addressed container files.
//
// Usage:
//
//	tile inspect FILE            print the manifest and block list
//	tile cat FILE PATH           write a resolved resource to stdout
//	tile serve [-addr :8080] FILE...   serve containers over HTTP
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/pflag"

	"github.com/tilefmt/tile"
	tilehttp "github.com/tilefmt/tile/http"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "cat":
		err = runCat(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "tile: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "tile:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  tile inspect FILE
  tile cat FILE PATH
  tile serve [-addr :8080] FILE...`)
}

func runInspect(args []string) error {
	flags := pflag.NewFlagSet("inspect", pflag.ExitOnError)
	blocks := flags.Bool("blocks", false, "list block CIDs and payload sizes")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one file, got %d", flags.NArg())
	}

	t, err := tile.ParseFile(flags.Arg(0))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(t.Manifest(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if *blocks {
		for id := range t.Blocks() {
			_, length, _ := t.Block(id)
			fmt.Printf("%s\t%d\n", id, length)
		}
	}
	return nil
}

func runCat(args []string) error {
	flags := pflag.NewFlagSet("cat", pflag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("cat takes a file and a resource path, got %d args", flags.NArg())
	}

	t, err := tile.ParseFile(flags.Arg(0))
	if err != nil {
		return err
	}
	_, data, err := t.Resolve(flags.Arg(1))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runServe(args []string) error {
	flags := pflag.NewFlagSet("serve", pflag.ExitOnError)
	addr := flags.String("addr", ":8080", "listen address")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return fmt.Errorf("serve needs at least one container file")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := tile.NewStore(tile.WithLogger(logger))
	for _, path := range flags.Args() {
		authority, manifest, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		fmt.Printf("http://%s/%s/  (%s)\n", hostFor(*addr), authority, manifest.Name)
	}

	handler := tilehttp.NewHandler(store, tilehttp.WithLogger(logger))
	logger.Info("serving", "addr", *addr, "containers", store.Len())
	return nethttp.ListenAndServe(*addr, gzhttp.GzipHandler(handler))
}

// hostFor makes a bare ":port" listen address printable as a URL host.
func hostFor(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
