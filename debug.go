package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/nf/lemterm/dcpu"
	"github.com/nf/lemterm/terminal"
)

type debugger struct {
	t *terminal.Terminal
	m *dcpu.Machine
}

const debugHelp = `commands:
  m, mem <addr> [n]    dump n words from addr
  p, poke <addr> <v>   store v at addr
  hwn                  list attached hardware
  hwq <n>              query device n
  hwi <n>              interrupt device n
  c, continue          resume
  q, quit              exit`

// prompt reads and runs debug commands until the user resumes or quits.
// It reports whether the session should end.
func (d *debugger) prompt() (quit bool) {
	d.t.SetMode(terminal.DebugMode)
	defer d.t.SetMode(terminal.RunMode)

	log.Print("debug: c to continue, q to quit, help for commands")
	for {
		line, err := d.t.ReadLine()
		if err != nil {
			return true
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		args := strings.Fields(arg)
		switch cmd {
		case "":
		case "c", "continue":
			return false
		case "q", "quit":
			return true
		case "h", "help":
			log.Print(debugHelp)
		case "m", "mem":
			d.mem(args)
		case "p", "poke":
			d.poke(args)
		case "hwn":
			for i := 0; i < d.m.NumDevices(); i++ {
				d.query(i)
			}
		case "hwq", "hwi":
			if len(args) != 1 {
				log.Printf("usage: %s <n>", cmd)
				break
			}
			i, err := strconv.Atoi(args[0])
			if err != nil {
				log.Printf("invalid device %q", args[0])
				break
			}
			if cmd == "hwq" {
				d.query(i)
				break
			}
			if _, err := d.m.Interrupt(i); err != nil {
				log.Print(err)
			}
		default:
			log.Printf("unknown command %q", cmd)
		}
	}
}

func (d *debugger) query(i int) {
	id, version, mfr, err := d.m.Query(i)
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("%d: id %.8x version %.4x mfr %.8x", i, id, version, mfr)
}

func (d *debugger) mem(args []string) {
	if len(args) < 1 || len(args) > 2 {
		log.Print("usage: mem <addr> [n]")
		return
	}
	addr, err := parseWord(args[0])
	if err != nil {
		log.Printf("invalid addr %q", args[0])
		return
	}
	n := 8
	if len(args) == 2 {
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 {
			log.Printf("invalid count %q", args[1])
			return
		}
	}
	r, err := d.m.Region(addr, n)
	if err != nil {
		log.Print(err)
		return
	}
	var b strings.Builder
	for i := 0; i < r.Len(); i++ {
		if i%8 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%.4x:", int(addr)+i)
		}
		fmt.Fprintf(&b, " %.4x", r.At(i))
	}
	log.Print(b.String())
}

func (d *debugger) poke(args []string) {
	if len(args) != 2 {
		log.Print("usage: poke <addr> <value>")
		return
	}
	addr, err := parseWord(args[0])
	if err != nil {
		log.Printf("invalid addr %q", args[0])
		return
	}
	v, err := parseWord(args[1])
	if err != nil {
		log.Printf("invalid value %q", args[1])
		return
	}
	d.m.Mem[addr] = v
	log.Printf("%.4x = %.4x", addr, v)
}

// parseWord parses a 16-bit value; a bare number is hexadecimal.
func parseWord(s string) (uint16, error) {
	base := 16
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	} else if strings.HasPrefix(s, "#") {
		s, base = s[1:], 10
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err
}
