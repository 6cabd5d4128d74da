package sfxr

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const library = "Coin:" + coinSettings + "\r\n" +
	"\n" +
	"jump:0,,0.3,,0.4,0.3,,0.2,,,,,,0.5,,,,,,1,,,,,0.5\n"

func TestParseContainer(t *testing.T) {
	c, err := ParseContainer(strings.NewReader(library))
	expectNoError(t, err)
	expectEqual(t, c.IsEmpty(), false)
	expectEqual(t, c.Contains("coin"), true)
	expectEqual(t, c.Contains("COIN"), true)
	expectEqual(t, c.Contains("laser"), false)
	expectEqual(t, c.Sound("cOiN"), coinSettings)
	titles := c.Titles()
	expectEqual(t, len(titles), 2)
	expectEqual(t, titles[0], "coin")
	expectEqual(t, titles[1], "jump")
}

func TestContainerMissingTitle(t *testing.T) {
	c := NewContainer()
	expectEqual(t, c.IsEmpty(), true)
	s := c.Sound("nothing")
	expectEqual(t, s, strings.Repeat(",", 23))
	p := NewParams()
	ok, err := p.SetSettingsString(s)
	expectNoError(t, err)
	expectEqual(t, ok, true)
	expectEqual(t, p.Get(MasterVolume), 0.0)
}

func TestParseContainerErrors(t *testing.T) {
	_, err := ParseContainer(strings.NewReader("coin:1\nbroken line\n"))
	if err == nil {
		t.Errorf("expected an error for a line without separator")
	}
	_, err = ParseContainer(strings.NewReader("coin:1\nCOIN:2\n"))
	if err == nil {
		t.Errorf("expected an error for a duplicate title")
	}
}

func TestContainerEdit(t *testing.T) {
	c := NewContainer()
	expectNoError(t, c.Add("Laser", "1"))
	if err := c.Add("laser", "2"); err == nil {
		t.Errorf("expected an error for a duplicate title")
	}
	if err := c.Add("", "2"); err == nil {
		t.Errorf("expected an error for an empty title")
	}
	c.Replace("LASER", "3")
	expectEqual(t, c.Sound("laser"), "3")
	c.Replace("boom", "4")
	expectEqual(t, c.Contains("boom"), true)
	c.Delete("Laser")
	expectEqual(t, c.Contains("laser"), false)
}

func TestContainerWriteTo(t *testing.T) {
	c := NewContainer()
	expectNoError(t, c.Add("b", "2"))
	expectNoError(t, c.Add("A", "1"))
	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	expectNoError(t, err)
	expectEqual(t, buf.String(), "a:1\nb:2\n")
	expectEqual(t, n, int64(buf.Len()))

	parsed, err := ParseContainer(&buf)
	expectNoError(t, err)
	expectEqual(t, parsed.Sound("A"), "1")
}

func TestContainerSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sounds.txt")
	c, err := LoadContainer(path)
	expectNoError(t, err)
	expectEqual(t, c.IsEmpty(), true)

	expectNoError(t, c.Add("coin", coinSettings))
	expectNoError(t, c.Save(path))
	loaded, err := LoadContainer(path)
	expectNoError(t, err)
	expectEqual(t, loaded.Sound("coin"), coinSettings)
}
