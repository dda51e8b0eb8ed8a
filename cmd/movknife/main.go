// Command movknife modifies atoms and fields in a QuickTime movie.
//
// Multiple atom types and fields can be given separated by commas. Field
// modifications use the form key:converter:value, for example:
//
//	movknife -modify colr -fields matrix:int:2 input.mov output.mov
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tetsuo/mov"
	"go.uber.org/zap"
)

func main() {
	modify := flag.String("modify", "", "modify specific comma-separated atom types")
	fields := flag.String("fields", "", "modify atom field values (key:converter:value,...)")
	strip := flag.String("strip", "", "strip specific comma-separated atom types")
	debug := flag.Bool("debug", false, "enable debugging output")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <input_movie> <output_movie>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		mov.SetLogger(l)
	}

	m, err := mov.ReadFile(flag.Arg(0), mov.StandardClasses()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	for _, s := range splitList(*strip) {
		for _, a := range m.Find(mov.KindOf(s)) {
			fmt.Printf("%s -> [free]\n", a)
			a.Free()
		}
	}

	edits, err := parseEdits(*fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, s := range splitList(*modify) {
		for _, a := range m.Find(mov.KindOf(s)) {
			fmt.Println(a)
			for _, e := range edits {
				prev, ok := a.Get(e.key)
				if !ok {
					fmt.Printf("| %s (no such field)\n", e.key)
					continue
				}
				a.Set(e.key, e.value)
				fmt.Printf("| %s=%v -> %v\n", e.key, prev, e.value)
			}
		}
	}

	out, err := os.Create(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := m.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", flag.Arg(1), err)
		os.Exit(1)
	}
}

type edit struct {
	key   string
	value any
}

// parseEdits parses the key:converter:value triples. The converter is
// either "str" or "int".
func parseEdits(s string) ([]edit, error) {
	var edits []edit
	for _, spec := range splitList(s) {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad field spec %q (want key:converter:value)", spec)
		}
		key, conv, raw := parts[0], parts[1], parts[2]
		switch conv {
		case "str":
			edits = append(edits, edit{key: key, value: raw})
		case "int":
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad int value %q for field %s", raw, key)
			}
			edits = append(edits, edit{key: key, value: n})
		default:
			return nil, fmt.Errorf("unknown converter %q for field %s", conv, key)
		}
	}
	return edits, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
