// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/gekkoasm/gekko"
	"github.com/ezrec/gekkoasm/highlight"
)

func main() {
	var base string
	var output string
	var listing bool
	var interactive bool

	flag.StringVar(&base, "base", "0", "Base virtual address (0x prefix for hex)")
	flag.StringVar(&output, "o", "-", "Output file")
	flag.BoolVar(&listing, "hex", false, "Emit an annotated hex listing instead of a raw image")
	flag.BoolVar(&interactive, "i", false, "Assemble instructions interactively")

	flag.Parse()

	log.SetPrefix("gekkoasm: ")
	log.SetFlags(0)

	baseAddress, err := strconv.ParseUint(base, 0, 32)
	if err != nil {
		log.Fatalf("-base %v: %v", base, err)
	}

	if interactive {
		runInteractive(uint32(baseAddress))
		return
	}

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [flags] source.s", os.Args[0])
	}
	input := flag.Arg(0)

	src, err := os.ReadFile(input)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	blocks, err := gekko.Assemble(string(src), uint32(baseAddress))
	if err != nil {
		var asmErr gekko.AssemblerError
		if errors.As(err, &asmErr) {
			log.Fatalf("%v:\n%v", input, asmErr.Detail())
		}
		log.Fatalf("%v: %v", input, err)
	}

	out := os.Stdout
	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = ouf
	}

	if listing {
		err = writeListing(out, string(src), blocks)
	} else {
		err = writeImage(out, blocks, uint32(baseAddress))
	}
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}

// writeImage lays blocks out as one raw image, offset from the base
// address, filling the gaps between blocks with zeros.
func writeImage(w io.Writer, blocks []gekko.Block, base uint32) error {
	var image []byte
	for _, block := range blocks {
		if block.Address < base {
			return fmt.Errorf("block at 0x%08x precedes the base address 0x%08x",
				block.Address, base)
		}
		offset := int(block.Address - base)
		if grow := offset + len(block.Bytes) - len(image); grow > 0 {
			image = append(image, make([]byte, grow)...)
		}
		copy(image[offset:], block.Bytes)
	}
	_, err := w.Write(image)
	return err
}

// writeListing dumps each block as addressed hex rows, preceded by the
// source annotated with ANSI colors from the highlight scan.
func writeListing(w io.Writer, src string, blocks []gekko.Block) error {
	for _, line := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		if _, err := fmt.Fprintln(w, colorize(line)); err != nil {
			return err
		}
	}

	for _, block := range blocks {
		for row := 0; row < len(block.Bytes); row += 16 {
			end := min(row+16, len(block.Bytes))
			_, err := fmt.Fprintf(w, "%08x  % x\n", block.Address+uint32(row), block.Bytes[row:end])
			if err != nil {
				return err
			}
		}
	}
	return nil
}

var formatColors = map[highlight.Format]string{
	highlight.FORMAT_DIRECTIVE: "31",
	highlight.FORMAT_MNEMONIC:  "32",
	highlight.FORMAT_IMMEDIATE: "33",
	highlight.FORMAT_GPR:       "36",
	highlight.FORMAT_FPR:       "36",
	highlight.FORMAT_SPR:       "36",
	highlight.FORMAT_CR_FIELD:  "36",
	highlight.FORMAT_CR_FLAG:   "36",
	highlight.FORMAT_STRING:    "92",
	highlight.FORMAT_HA_LA:     "35",
	highlight.FORMAT_ERROR:     "91;4",
}

// colorize renders one source line with its highlight spans. Spans that
// overlap an already-rendered region are skipped.
func colorize(line string) string {
	spans := highlight.Scan(line).Spans
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Col < spans[j].Col })

	var sb strings.Builder
	pos := 0
	for _, span := range spans {
		if span.Col < pos || span.Col+span.Len > len(line) {
			continue
		}
		color, ok := formatColors[span.Format]
		if !ok || span.Len == 0 {
			continue
		}
		sb.WriteString(line[pos:span.Col])
		sb.WriteString("\x1b[" + color + "m")
		sb.WriteString(line[span.Col : span.Col+span.Len])
		sb.WriteString("\x1b[0m")
		pos = span.Col + span.Len
	}
	sb.WriteString(line[pos:])
	return sb.String()
}

// runInteractive assembles one line at a time, advancing the placement
// address past whatever each line emitted.
func runInteractive(address uint32) {
	fd := int(os.Stdin.Fd())
	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}

	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			log.Fatal(err)
		}
		defer term.Restore(fd, oldState)
	}

	t := term.NewTerminal(screen, "")
	for {
		t.SetPrompt(fmt.Sprintf("%08x> ", address))
		line, err := t.ReadLine()
		if err != nil {
			return
		}

		blocks, err := gekko.Assemble(line, address)
		if err != nil {
			var asmErr gekko.AssemblerError
			if errors.As(err, &asmErr) {
				fmt.Fprintln(t, asmErr.Detail())
			} else {
				fmt.Fprintln(t, err)
			}
			continue
		}

		for _, block := range blocks {
			if len(block.Bytes) != 0 {
				fmt.Fprintf(t, "%08x: % x\n", block.Address, block.Bytes)
			}
			address = block.Address + uint32(len(block.Bytes))
		}
	}
}
