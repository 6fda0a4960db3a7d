// Command lemterm shows a DCPU-16 memory image on an LEM1802 display and
// feeds the host keyboard to it, using the host terminal.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"golang.org/x/term"

	"github.com/nf/lemterm/dcpu"
	"github.com/nf/lemterm/terminal"
)

// loopDelay is how long the emulator loop sleeps between ticks.
const loopDelay = time.Millisecond

func main() {
	log.SetPrefix("lemterm: ")
	log.SetFlags(0)

	def := terminal.DefaultConfig()
	var (
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload the image when it changes)")
		debugFlag = flag.Bool("debug", false, "start at the debug prompt")
		hzFlag    = flag.Int("hz", def.DisplayHz, "display refresh `rate` in Hz")
		baudFlag  = flag.Int("baud", def.KeyboardBaud, "keyboard poll `rate` per second")
		kbdFlag   = flag.Int("kbd_size", def.KeyboardSize, "keyboard buffer size in words")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-dev] [-debug] <image.bin>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal(&terminal.InitError{Op: "open", Err: errors.New("standard output is not a terminal")})
	}

	cfg := def
	cfg.DisplayHz = *hzFlag
	cfg.KeyboardBaud = *baudFlag
	cfg.KeyboardSize = *kbdFlag

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), cfg, *devFlag, *debugFlag)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(imageFile string, cfg terminal.Config, dev, debug bool) error {
	image, err := os.ReadFile(imageFile)
	if err != nil {
		return err
	}
	m := &dcpu.Machine{}
	if _, err := m.Load(bytes.NewReader(image)); err != nil {
		return fmt.Errorf("loading %s: %v", imageFile, err)
	}

	var reload <-chan devEvent
	if dev {
		w, err := watchImage(imageFile)
		if err != nil {
			return fmt.Errorf("dev: %v", err)
		}
		defer w.Close()
		reload = w.Events
	}

	t, err := terminal.Open(m, cfg)
	if err != nil {
		return err
	}
	log.SetPrefix("")
	log.SetOutput(t)
	defer func() {
		t.Close()
		log.SetOutput(os.Stderr)
		log.SetPrefix("lemterm: ")
	}()

	d := &debugger{t: t, m: m}
	if debug && d.prompt() {
		return nil
	}
	for {
		select {
		case <-t.Done():
			return nil
		case <-t.Break():
			if d.prompt() {
				return nil
			}
		case ev := <-reload:
			if ev.err != nil {
				log.Printf("dev: %v", ev.err)
				break
			}
			n, err := m.Load(bytes.NewReader(ev.image))
			if err != nil {
				log.Printf("dev: %v", err)
				break
			}
			t.Reset()
			log.Printf("dev: reloaded %d words", n)
		default:
		}
		t.Tick(time.Now())
		time.Sleep(loopDelay)
	}
}
