package main

import (
	"testing"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("settings 0%2C%2C0.5")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	expectEqual(t, len(command), 2)
	expectEqual(t, command[0], "settings")
	expectEqual(t, command[1], "0,,0.5")

	_, err = parseCommand("load %zz")
	if err == nil {
		t.Errorf("expected an error")
	}
}

func TestFormatFFT(t *testing.T) {
	expectEqual(t, formatFFT(nil), "fft")
	expectEqual(t, formatFFT([]float64{0.5, 1.0 / 3}), "fft 0.500000 0.333333")
}

func TestKeyCommands(t *testing.T) {
	commands, ok := keyCommands('2')
	expectEqual(t, ok, true)
	expectEqual(t, len(commands), 2)
	expectEqual(t, commands[0][1], "laserShoot")
	expectEqual(t, commands[1][0], "play")

	commands, ok = keyCommands('m')
	expectEqual(t, ok, true)
	expectEqual(t, commands[0][0], "play_mutated")

	_, ok = keyCommands('8')
	expectEqual(t, ok, false)
}
