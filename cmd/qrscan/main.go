// Command qrscan decodes QR codes from image files.
//
//	qrscan [-scheme uuid|sequential] [-json] photo.jpg capture.png ...
//
// It exits with status 1 when any file has no readable code.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/xelth-com/qrcatalog/internal/decoder"
	"github.com/xelth-com/qrcatalog/internal/identifier"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fileResult struct {
	File     string   `json:"file"`
	Status   string   `json:"status"`
	Payload  string   `json:"payload,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
	Faults   []string `json:"faults,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qrscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scheme := fs.String("scheme", "", "also check payloads against an identifier scheme (uuid or sequential)")
	asJSON := fs.Bool("json", false, "print one JSON object per file")
	verbose := fs.Bool("v", false, "log strategy faults")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: qrscan [-scheme uuid|sequential] [-json] FILE...")
		return 2
	}

	var check identifier.Scheme
	if *scheme != "" {
		s, err := identifier.ParseScheme(*scheme)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		check = s
	}

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}
	dec := decoder.NewDefault(log)

	exit := 0
	for _, path := range fs.Args() {
		res := scanFile(dec, path, check)
		if res.Status != string(decoder.StatusFound) {
			exit = 1
		}
		if *asJSON {
			line, _ := json.Marshal(res)
			fmt.Fprintln(stdout, string(line))
			continue
		}
		switch {
		case res.Payload != "":
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", res.File, res.Status, res.Payload)
		default:
			fmt.Fprintf(stdout, "%s\t%s\n", res.File, res.Status)
		}
	}
	return exit
}

func scanFile(dec *decoder.Orchestrator, path string, check identifier.Scheme) fileResult {
	res := fileResult{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Status = "error"
		res.Faults = []string{err.Error()}
		return res
	}

	out := dec.DecodeBytes(data)
	res.Status = string(out.Status)
	res.Payload = out.Payload
	res.Strategy = out.Strategy
	res.Faults = out.FaultMessages()

	if out.Found() && check != "" {
		if _, err := decoder.ParseIdentifier(out.Payload, check); err != nil {
			res.Status = "invalid_payload"
		}
	}
	return res
}
