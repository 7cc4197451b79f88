// bench-stmtcache measures what the prepared statement cache is worth on a
// tight retrieve loop against an in-memory database. Run it with a small
// --capacity to watch the hit rate fall off.
//
// Usage:
//
//	go run ./scripts/bench-stmtcache --records 1000 --lookups 20000 --capacity 128
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/sqlite"
)

func main() {
	records := flag.Int("records", 1000, "Rows to seed")
	lookups := flag.Int("lookups", 20000, "Retrieves to time")
	capacity := flag.Int("capacity", 0, "Statement cache capacity (0 = default)")

	flag.Parse()

	if err := run(context.Background(), *records, *lookups, *capacity); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, records, lookups, capacity int) error {
	registry := relations.NewRegistry()

	source, err := sqlite.New("bench", ":memory:",
		sqlite.WithRegistry(registry),
		sqlite.WithStmtCapacity(capacity),
	)
	if err != nil {
		return err
	}

	defer source.Close()

	item, err := relations.NewSchema("item", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
	}, relations.WithSource("bench"), relations.WithRegistry(registry))
	if err != nil {
		return err
	}

	if err = source.Migrate(ctx, item); err != nil {
		return err
	}

	seed := item.Many()
	for i := range records {
		seed.Add(fmt.Sprintf("item-%d", i))
	}

	if _, err = seed.Create(ctx); err != nil {
		return err
	}

	start := time.Now()

	for i := range lookups {
		id := int64(i%records) + 1

		if _, err = item.One(relations.Values{"id": id}).Retrieve(ctx, true); err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	stats := source.StmtStats()
	rate := float64(lookups) / elapsed.Seconds()

	fmt.Printf("%s lookups in %s (%s/s)\n",
		humanize.Comma(int64(lookups)), elapsed.Round(time.Millisecond), humanize.CommafWithDigits(rate, 0))
	fmt.Printf("statements: %d cached (capacity %d), %s hits, %s misses, %.1f%% hit rate\n",
		stats.Entries, stats.Capacity, humanize.Comma(stats.Hits), humanize.Comma(stats.Misses), stats.HitRate()*100)

	return nil
}
