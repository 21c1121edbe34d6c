// Command qrgen renders a payload into a QR code PNG.
//
//	qrgen -o code.png [-level H] [-module 20] [-border 6] PAYLOAD
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xelth-com/qrcatalog/internal/qrencode"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	def := qrencode.DefaultOptions()

	fs := flag.NewFlagSet("qrgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "qrcode.png", "output PNG file")
	level := fs.String("level", "H", "error correction level: L, M, Q or H")
	module := fs.Int("module", def.ModuleSize, "pixels per module")
	border := fs.Int("border", def.Border, "quiet zone width in modules")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: qrgen [-o FILE] [-level L|M|Q|H] [-module N] [-border N] PAYLOAD")
		return 2
	}

	lvl, err := qrencode.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	png, err := qrencode.RenderPNG(fs.Arg(0), qrencode.Options{Level: lvl, ModuleSize: *module, Border: *border})
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", *out, err)
		return 1
	}
	return 0
}
