// Package importer loads reference data (ingredients and tags) from files
// into the store. Every record is written in its own transaction, so a bad
// row never undoes the rows before it.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"

	applog "github.com/pageza/foodgram/backend/internal/log"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Result counts what an import did.
type Result struct {
	Created  int
	Existing int
	Failed   []RowError
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d already present, %d failed", r.Created, r.Existing, len(r.Failed))
}

// RowError ties a rejected record to its 1-based position in the input.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

type Importer struct {
	db       *gorm.DB
	validate *validator.Validate
}

func New(db *gorm.DB, v *validator.Validate) *Importer {
	return &Importer{db: db, validate: v}
}

// catalog returns a catalog service bound to tx.
func (im *Importer) catalog(tx *gorm.DB) *service.CatalogService {
	return service.NewCatalogService(repository.NewTagRepository(tx), repository.NewIngredientRepository(tx), im.validate)
}

// Ingredients reads (name, measurement_unit) rows. A leading header row
// naming the columns is skipped. Rows that fail are collected in the result
// and do not stop the import; read errors do.
func (im *Importer) Ingredients(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		if row == 1 && isHeader(record) {
			continue
		}
		if len(record) < 2 {
			res.Failed = append(res.Failed, RowError{Row: row, Err: fmt.Errorf("expected 2 columns, got %d", len(record))})
			continue
		}

		var created bool
		err = im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			_, created, err = im.catalog(tx).ImportIngredient(ctx, record[0], record[1])
			return err
		})
		res.record(ctx, row, created, err)
	}

	applog.Info(ctx, "ingredient import finished", "created", res.Created, "existing", res.Existing, "failed", len(res.Failed))
	return res, nil
}

// Tags reads a YAML list of {name, color, slug} and gets or creates each tag
// by slug.
func (im *Importer) Tags(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	var tags []models.Tag
	if err := yaml.NewDecoder(r).Decode(&tags); err != nil && !errors.Is(err, io.EOF) {
		return res, fmt.Errorf("decode yaml: %w", err)
	}

	for i := range tags {
		var created bool
		err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, err = im.catalog(tx).ImportTag(ctx, &tags[i])
			return err
		})
		res.record(ctx, i+1, created, err)
	}

	applog.Info(ctx, "tag import finished", "created", res.Created, "existing", res.Existing, "failed", len(res.Failed))
	return res, nil
}

func (r *Result) record(ctx context.Context, row int, created bool, err error) {
	switch {
	case err != nil:
		applog.Warn(ctx, "skipping row", "row", row, "error", err)
		r.Failed = append(r.Failed, RowError{Row: row, Err: err})
	case created:
		r.Created++
	default:
		r.Existing++
	}
}

func isHeader(record []string) bool {
	return len(record) >= 2 &&
		strings.EqualFold(strings.TrimSpace(record[0]), "name") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "measurement_unit")
}
