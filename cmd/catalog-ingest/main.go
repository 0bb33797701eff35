// Command catalog-ingest imports supplier catalog dumps into the product
// table. Each input is a gzip-compressed file with one JSON object per line:
//
//	{"name": "Butter Croissant", "price": "3.50", "image": ""}
//
// Files are parsed concurrently. Product names are deduplicated across all
// files and against the existing catalog with a bloom filter; the first
// occurrence of a name wins. The filter has a 0.1% false positive rate, so a
// tiny fraction of new names may be skipped as presumed duplicates, which is
// acceptable for bulk catalog imports.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bakeshop/internal/domain/product"
	"github.com/xenking/bakeshop/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	maxLineBytes  = 1 << 20
)

// ingestItem is one parsed catalog line.
type ingestItem struct {
	name  string
	price decimal.Decimal
	image string
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more catalog .gz files as arguments")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewProductRepository(pool)

	// Pre-load existing catalog names so reruns never duplicate products.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	for _, p := range existing {
		filter.AddString(p.Name)
	}

	slog.Info("ingesting files",
		slog.Int("files", len(files)),
		slog.Int("existing_products", len(existing)),
	)

	items := make(chan ingestItem, 1024)

	g, ctx := errgroup.WithContext(ctx)

	producers, pctx := errgroup.WithContext(ctx)
	for _, f := range files {
		producers.Go(parseFile(pctx, f, items))
	}
	g.Go(func() error {
		defer close(items)
		return producers.Wait()
	})

	// Single writer: the bloom filter and insert order stay consistent
	// without locking.
	g.Go(func() error {
		var inserted, skipped int
		for item := range items {
			if filter.TestAndAddString(item.name) {
				skipped++
				continue
			}

			row := &product.Product{
				Name:  item.name,
				Price: item.price,
				Image: item.image,
			}
			if err := repo.Create(ctx, row); err != nil {
				return errors.Wrapf(err, "insert product %s", item.name)
			}
			inserted++

			if inserted%1000 == 0 {
				slog.Info("write progress", slog.Int("inserted", inserted), slog.Int("skipped", skipped))
			}
		}

		slog.Info("ingest summary", slog.Int("inserted", inserted), slog.Int("skipped", skipped))
		return nil
	})

	return g.Wait()
}

// parseFile streams one gzip file and sends parsed lines to items.
func parseFile(ctx context.Context, path string, items chan<- ingestItem) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			item, err := parseLine(line)
			if err != nil {
				return errors.Wrapf(err, "parse line %d of %s", count+1, path)
			}
			if item.name == "" {
				continue
			}

			select {
			case items <- item:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress", slog.String("file", path), slog.Uint64("lines", count))
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("parse complete", slog.String("file", path), slog.Uint64("lines", count))
		return nil
	}
}

// parseLine decodes one catalog JSON object. Price may arrive as a JSON
// number or a string.
func parseLine(line []byte) (ingestItem, error) {
	var item ingestItem
	d := jx.DecodeBytes(line)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			item.name = v
			return err
		case "price":
			switch d.Next() {
			case jx.String:
				v, err := d.Str()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(v)
				item.price = p
				return err
			case jx.Number:
				n, err := d.Num()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(n.String())
				item.price = p
				return err
			default:
				return errors.New("price must be a string or number")
			}
		case "image":
			v, err := d.Str()
			item.image = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return ingestItem{}, err
	}
	if item.price.IsNegative() {
		return ingestItem{}, errors.Errorf("negative price for %q", item.name)
	}
	return item, nil
}
