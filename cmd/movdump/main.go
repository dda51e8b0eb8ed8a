// Command movdump reads QuickTime movies and prints their atom trees,
// including fields and values.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tetsuo/mov"
	"go.uber.org/zap"
)

func main() {
	types := flag.String("types", "", "only show atoms of specific comma-separated types")
	noFields := flag.Bool("no-fields", false, "do not show atom fields and values")
	metadata := flag.Bool("metadata", false, "show related metadata key and value atoms")
	scan := flag.Bool("scan", false, "list top-level atoms without parsing their contents")
	debug := flag.Bool("debug", false, "enable debugging output")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <movie ...>\n", os.Args[0])
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

	var kinds []mov.Kind
	if *types != "" {
		for _, s := range strings.Split(*types, ",") {
			kinds = append(kinds, mov.KindOf(s))
		}
	}

	for _, path := range flag.Args() {
		fmt.Printf("[%s]\n", path)
		if *scan {
			if err := scanFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "error scanning %s: %v\n", path, err)
				os.Exit(1)
			}
			continue
		}
		m, err := mov.ReadFile(path, mov.StandardClasses()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		switch {
		case *metadata:
			dumpMetadata(m)
		case len(kinds) > 0:
			dumpAtoms(m.Find(kinds...), 0, !*noFields)
		default:
			dumpAtoms(m.Atoms, 0, !*noFields)
		}
	}
}

func scanFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := mov.NewScanner(f)
	for sc.Next() {
		e := sc.Entry()
		fmt.Printf("%s @%d (%d bytes)\n", e.Kind, e.Offset, e.Size)
	}
	return sc.Err()
}

func dumpAtoms(atoms []*mov.Atom, level int, fields bool) {
	indent := strings.Repeat("    ", level)
	for _, a := range atoms {
		fmt.Printf("%s%s\n", indent, a)
		if fields {
			for _, key := range a.Keys() {
				v, _ := a.Get(key)
				switch v := v.(type) {
				case []byte:
					fmt.Printf("%s | %s=%q\n", indent, key, v)
				case string:
					fmt.Printf("%s | %s=%q\n", indent, key, v)
				default:
					fmt.Printf("%s | %s=%v\n", indent, key, v)
				}
			}
		}
		dumpAtoms(a.Children(), level+1, fields)
	}
}

func dumpMetadata(m *mov.Movie) {
	const indent = "    "
	for _, meta := range m.Find(mov.KindMeta) {
		if p := meta.Parent(); p != nil {
			fmt.Println(p)
		}
		fmt.Println(indent + meta.String())
		for _, keys := range meta.Find(mov.KindKeys) {
			entries, ok := keys.Get("keys")
			if !ok {
				continue
			}
			for _, k := range entries.([]mov.MetadataKey) {
				v, _ := mov.LookupMetadata(keys, k.Namespace, string(k.Name))
				fmt.Printf("%s%s:%s=%v\n", indent+indent, k.Namespace, k.Name, v)
			}
		}
	}
}
