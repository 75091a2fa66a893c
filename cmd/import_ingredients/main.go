// Command import_ingredients loads a CSV of (name, measurement_unit) rows
// into the ingredient catalog.
//
//	import_ingredients data/ingredients.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/importer"
	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	strict := flag.Bool("strict", false, "exit non-zero when any row is rejected")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-strict] <file.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, flag.Arg(0), *strict); err != nil {
		applog.Error(ctx, "ingredient import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, strict bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	res, err := importer.New(db, service.NewValidator()).Ingredients(ctx, f)
	if err != nil {
		return err
	}
	fmt.Println(res)
	if strict && len(res.Failed) > 0 {
		return fmt.Errorf("%d rows rejected, first: %w", len(res.Failed), res.Failed[0])
	}
	return nil
}
