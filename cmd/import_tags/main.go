// Command import_tags loads tags from a YAML list of {name, color, slug}.
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
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <tags.yaml>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		applog.Error(ctx, "failed to open tag file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		applog.Error(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}
	db, err := database.Open(cfg)
	if err != nil {
		applog.Error(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		applog.Error(ctx, "failed to migrate database", "error", err)
		os.Exit(1)
	}

	res, err := importer.New(db, service.NewValidator()).Tags(ctx, f)
	if err != nil {
		applog.Error(ctx, "tag import failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(res)
}
