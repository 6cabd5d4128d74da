package sfxr

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// ----- Container ----- //

// Container maps sound titles to settings strings. Titles are matched
// case-insensitively. The text form is one "title:settings" pair per line.
type Container struct {
	mu      sync.RWMutex
	configs map[string]string
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{configs: make(map[string]string)}
}

// ParseContainer reads "title:settings" lines. Blank lines are skipped and
// CRLF line endings are accepted.
func ParseContainer(r io.Reader) (*Container, error) {
	c := NewContainer()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		pair := strings.SplitN(line, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("line %d: missing ':' separator", lineNum)
		}
		if err := c.add(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadContainer reads a sound library file. A missing file gives an empty
// container.
func LoadContainer(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewContainer(), nil
	}
	if err != nil {
		return nil, err
	}
	c, err := ParseContainer(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

// Sound returns the settings for title. A title that is not there is logged
// and yields a silent sound.
func (c *Container) Sound(title string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.configs[strings.ToLower(title)]; ok {
		return s
	}
	log.Printf("no sound with title %q found\n", title)
	return silentSettings
}

// Contains ...
func (c *Container) Contains(title string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.configs[strings.ToLower(title)]
	return ok
}

// IsEmpty ...
func (c *Container) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.configs) == 0
}

// Titles returns the lower-cased titles in sorted order.
func (c *Container) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	titles := make([]string, 0, len(c.configs))
	for title := range c.configs {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Add fails if title is already taken.
func (c *Container) Add(title string, settings string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(title, settings)
}

func (c *Container) add(title string, settings string) error {
	key := strings.ToLower(title)
	if key == "" {
		return fmt.Errorf("empty title")
	}
	if strings.ContainsAny(key, ":\r\n") {
		return fmt.Errorf("invalid title %q", title)
	}
	if _, ok := c.configs[key]; ok {
		return fmt.Errorf("sound %q already exists", title)
	}
	c.configs[key] = settings
	return nil
}

// Replace adds or overwrites.
func (c *Container) Replace(title string, settings string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[strings.ToLower(title)] = settings
}

// Delete ...
func (c *Container) Delete(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.configs, strings.ToLower(title))
}

// WriteTo writes the text form with titles sorted.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	titles := make([]string, 0, len(c.configs))
	for title := range c.configs {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	var total int64
	for _, title := range titles {
		n, err := fmt.Fprintf(w, "%s:%s\n", title, c.configs[title])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save writes the container to path.
func (c *Container) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
