package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/chunkstore/internal/cache"
	"github.com/OCharnyshevich/chunkstore/internal/config"
	"github.com/OCharnyshevich/chunkstore/internal/wire"
	"github.com/OCharnyshevich/chunkstore/internal/world/anvil"
	"github.com/OCharnyshevich/chunkstore/internal/world/block"
	"github.com/OCharnyshevich/chunkstore/internal/world/chunk"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		configPath = flag.String("config", "", "YAML config file")
		x          = flag.Int("x", 0, "chunk X coordinate")
		z          = flag.Int("z", 0, "chunk Z coordinate")
		out        = flag.String("out", "", "write the wire-encoded chunk to this file")
		region     = flag.Bool("region", false, "convert every chunk of the region containing x,z")
		workers    = flag.Int("workers", 4, "parallel decoders in region mode")
	)
	flag.StringVar(&cfg.RegionDir, "region-dir", cfg.RegionDir, "directory holding .mca region files")
	flag.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "SQLite chunk cache path")
	flag.StringVar(&cfg.BlocksPath, "blocks", cfg.BlocksPath, "minecraft-data blocks.json path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pos := chunk.Pos{X: int32(*x), Z: int32(*z)}
	if err := run(ctx, log, cfg, pos, *out, *region, *workers); err != nil {
		log.Error("chunktool failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config, pos chunk.Pos, out string, wholeRegion bool, workers int) error {
	reg, err := block.Load(cfg.BlocksPath)
	if err != nil {
		return err
	}
	log.Info("loaded block registry", "path", cfg.BlocksPath, "blocks", reg.Len())

	store, err := cache.OpenSQLite(cfg.CachePath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := &converter{
		log:    log,
		dec:    anvil.NewDecoder(reg, log),
		store:  store,
		region: cfg.RegionDir,
	}

	if !wholeRegion {
		c, err := conv.convert(ctx, pos)
		if err != nil {
			return err
		}
		if out == "" {
			return nil
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := wire.Write(f, c); err != nil {
			f.Close()
			return err
		}
		log.Info("wrote wire chunk", "path", out, "bytes", wire.EncodedLen(c))
		return f.Close()
	}

	// Each chunk is decoded independently; the decoder and registry are shared read-only.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	base := chunk.Pos{X: pos.X &^ 31, Z: pos.Z &^ 31}
	for i := int32(0); i < 32*32; i++ {
		p := chunk.Pos{X: base.X + i%32, Z: base.Z + i/32}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, err := conv.convert(ctx, p)
			switch {
			case errors.Is(err, anvil.ErrChunkNotFound), errors.Is(err, anvil.ErrIncompleteGeneration):
				log.Debug("skipping chunk", "chunk", p, "reason", err)
				return nil
			default:
				return err
			}
		})
	}
	return g.Wait()
}

type converter struct {
	log    *slog.Logger
	dec    *anvil.Decoder
	store  *cache.Store
	region string
}

func (c *converter) convert(ctx context.Context, pos chunk.Pos) (*chunk.Data, error) {
	raw, err := anvil.ReadRegionChunk(anvil.RegionPath(c.region, pos), pos)
	if err != nil {
		return nil, err
	}
	data, err := c.dec.Decode(raw, pos)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %s: %w", pos, err)
	}
	if err := c.store.Put(ctx, data); err != nil {
		return nil, err
	}

	solid := 0
	for _, id := range data.Blocks.Raw() {
		if id != chunk.Air {
			solid++
		}
	}
	c.log.Info("converted chunk", "chunk", pos, "non_air", solid)
	return data, nil
}
