package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jinjor/desktop-sfxr/src/sfxr"
	"golang.org/x/sync/errgroup"
)

var (
	count = flag.Int("n", 4, "number of sounds per preset")
	seed  = flag.Int64("seed", 1, "random seed")
	merge = flag.Bool("merge", false, "keep the sounds already in the file, overwriting generated titles")
)

func main() {
	flag.Parse()
	path := flag.Arg(0)
	if path == "" {
		log.Fatalln("usage: gensounds [-n count] [-seed seed] [-merge] <sounds file>")
	}
	log.SetFlags(log.Lshortfile)

	container := sfxr.NewContainer()
	if *merge {
		c, err := sfxr.LoadContainer(path)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		container = c
	}

	g, _ := errgroup.WithContext(context.Background())
	for i, preset := range sfxr.Presets() {
		i, preset := i, preset
		g.Go(func() error {
			return generate(container, preset, *seed+int64(i), *count)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if err := container.Save(path); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Printf("Successfully generated %d sounds.\n", len(container.Titles()))
}

func generate(container *sfxr.Container, preset sfxr.Preset, seed int64, n int) error {
	p := sfxr.NewParamsWithSeed(seed)
	for k := 0; k < n; k++ {
		p.Generate(preset)
		title := fmt.Sprintf("%s%d", preset, k+1)
		if *merge {
			container.Replace(title, p.SettingsString())
		} else if err := container.Add(title, p.SettingsString()); err != nil {
			return err
		}
		log.Printf("generated %s (%d samples)\n", title, sfxr.EnvelopeLength(p))
	}
	return nil
}
