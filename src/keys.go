package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/jinjor/desktop-sfxr/src/sfxr"
	"golang.org/x/term"
)

const keysHelp = "1-7: preset, space: play, m: play mutated, r: randomize, u: mutate, d: defaults, s: stop, q: quit"

// keyCommands maps a key press to the commands it sends.
func keyCommands(key byte) ([][]string, bool) {
	if key >= '1' && key <= '7' {
		preset := sfxr.Presets()[key-'1']
		return [][]string{{"preset", preset.String()}, {"play"}}, true
	}
	switch key {
	case ' ':
		return [][]string{{"play"}}, true
	case 'm':
		return [][]string{{"play_mutated"}}, true
	case 'r':
		return [][]string{{"randomize"}, {"play"}}, true
	case 'u':
		return [][]string{{"mutate"}, {"play"}}, true
	case 'd':
		return [][]string{{"defaults"}, {"play"}}, true
	case 's':
		return [][]string{{"stop"}}, true
	}
	return nil, false
}

// receiveKeys reads single key presses from a raw terminal until q, Ctrl-C
// or ctx is done.
func receiveKeys(ctx context.Context, cancel context.CancelFunc, commandCh chan<- []string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			log.Printf("failed to restore terminal: %v\n", err)
		}
	}()
	if err := syscall.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("failed to set nonblocking stdin: %w", err)
	}
	defer syscall.SetNonblock(fd, false)

	fmt.Print(keysHelp + "\r\n")
	buf := make([]byte, 1)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
		}
		n, err := syscall.Read(fd, buf)
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return err
		}
		if buf[0] == 'q' || buf[0] == 0x03 {
			cancel()
			break loop
		}
		commands, ok := keyCommands(buf[0])
		if !ok {
			continue
		}
		for _, command := range commands {
			commandCh <- command
		}
	}
	log.Println("receiveKeys() ended.")
	return nil
}
