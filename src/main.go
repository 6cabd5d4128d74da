package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-sfxr/src/audio"
	"github.com/jinjor/desktop-sfxr/src/sfxr"
	"golang.org/x/sync/errgroup"
)

var (
	sockFileName = flag.String("socket", "/tmp/desktop-sfxr.sock", "unix socket to accept commands on")
	soundsPath   = flag.String("sounds", "", "sounds file to load from and save to")
	soundTitle   = flag.String("sound", "", "title of the sound to load on start")
	midiPort     = flag.Int("midi", -1, "MIDI IN port, or -1 to disable")
	useKeys      = flag.Bool("keys", false, "play sounds from the keyboard instead of a socket")
	tick         = flag.Duration("tick", 10*time.Millisecond, "interval between background cache steps")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	container := sfxr.NewContainer()
	if *soundsPath != "" {
		c, err := sfxr.LoadContainer(*soundsPath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		container = c
		log.Printf("loaded %d sounds from %s\n", len(c.Titles()), *soundsPath)
	}
	sched := sfxr.NewScheduler(sfxr.DefaultSamplesPerTick)

	device, err := audio.NewAudio(container, *soundsPath, sched)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer device.Close()
	if *soundTitle != "" {
		device.CommandCh <- []string{"load", *soundTitle}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	run := func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			return device.Start(ctx)
		})
		g.Go(func() error {
			return sched.Run(ctx, *tick)
		})
		if *midiPort >= 0 {
			g.Go(func() error {
				return device.ReceiveMidi(ctx, audio.ListenToMidiIn(ctx, *midiPort))
			})
		}
	}
	if *useKeys {
		g, ctx := errgroup.WithContext(ctx)
		run(ctx, g)
		g.Go(func() error {
			return receiveKeys(ctx, cancel, device.CommandCh)
		})
		err = g.Wait()
	} else {
		err = withIPCConnection(ctx, *sockFileName, func(conn net.Conn) error {
			g, ctx := errgroup.WithContext(ctx)
			run(ctx, g)
			g.Go(func() error {
				return receiveCommands(ctx, conn, device.CommandCh)
			})
			g.Go(func() error {
				return sendReports(ctx, conn, device)
			})
			return g.Wait()
		})
	}
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			log.Printf("malformed command %q: %v\n", string(line), err)
			line = []byte{}
			continue
		}
		commandCh <- command
		log.Printf("received: %s\n", string(line))
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func formatFFT(result []float64) string {
	var b strings.Builder
	b.WriteString("fft")
	for _, value := range result {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(value, 'f', 6, 64))
	}
	return b.String()
}

func sendReports(ctx context.Context, conn net.Conn, audio *audio.Audio) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			lines := []string{formatFFT(audio.GetFFT())}
			if settings, ok := audio.GetSettings(); ok {
				lines = append(lines, "settings "+url.QueryEscape(settings))
			}
			if audio.Changes.Has("cached") {
				audio.Changes.Delete("cached")
				lines = append(lines, "cached")
			}
			if _, err := conn.Write([]byte(strings.Join(lines, "\n") + "\n")); err != nil {
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
