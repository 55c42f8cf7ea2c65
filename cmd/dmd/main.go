package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/chunkstore/internal/world/block"
)

func main() {
	var (
		base     = flag.String("base", "https://raw.githubusercontent.com/PrismarineJS/minecraft-data/master", "base url")
		platform = flag.String("platform", "pc", "platform of schemas")
		ver      = flag.String("version", "1.21.1", "version of schemas")
		out      = flag.String("o", "./data/blocks.json", "output file path")
	)
	flag.Parse()

	if *out == "" {
		panic("output path required")
	}

	if *platform == "" {
		panic("platform required")
	}

	if *ver == "" {
		panic("version required")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		panic(err)
	}

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.21.1
	url := fmt.Sprintf("%s/data/%s/%s/blocks.json", *base, *platform, *ver)

	log.Default().Printf("start downloading %s", url)

	if err := get.GetFile(*out, url); err != nil {
		panic(err)
	}

	reg, err := block.Load(*out)
	if err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading %s: %d blocks", *out, reg.Len())
}
