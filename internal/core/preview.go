package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/JonMunkholm/storefront/internal/logging"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	Rows          int `json:"rows"`
	DroppedRows   int `json:"dropped_rows"`
	Products      int `json:"products"`
	NewProducts   int `json:"new_products"`
	Existing      int `json:"existing_products"`
	Invalid       int `json:"invalid_products"`
	Variants      int `json:"variants"`
	ExistingSKUs  int `json:"existing_skus"`
	DuplicateSKUs int `json:"duplicate_skus_in_file"`
}

// ProductPreview is one product as the import would see it.
type ProductPreview struct {
	Key      string `json:"key"`
	Handle   string `json:"handle,omitempty"`
	Rows     int    `json:"rows"`
	Variants int    `json:"variants"`
	Error    string `json:"error,omitempty"`
}

// DuplicatePreview is a SKU that more than one product in the file claims.
type DuplicatePreview struct {
	SKU      string   `json:"sku"`
	Products []string `json:"products"`
}

// ImportPreview is the read-only analysis of an import.
//
// Existing products would fail as duplicates; existing SKUs would be
// skipped along with their image, prices and shipping row.
type ImportPreview struct {
	Summary          PreviewSummary     `json:"summary"`
	NewSamples       []ProductPreview   `json:"new_samples"`
	ExistingSamples  []ProductPreview   `json:"existing_samples"`
	InvalidSamples   []ProductPreview   `json:"invalid_samples"`
	ExistingSKUs     []string           `json:"existing_skus"`
	DuplicateSamples []DuplicatePreview `json:"duplicate_samples"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// Sample limits
const (
	maxNewSamples       = 10
	maxExistingSamples  = 10
	maxInvalidSamples   = 20
	maxExistingSKUs     = 20
	maxDuplicateSamples = 10
	keyBatchSize        = 1000
)

// PreviewImport groups and normalizes rows exactly like ImportRows and
// checks handles and SKUs against the database, without writing anything.
func (s *Service) PreviewImport(ctx context.Context, rows []Record, keyColumn string) (*ImportPreview, error) {
	start := time.Now()
	if keyColumn == "" {
		keyColumn = s.opts.KeyColumn
	}

	groups := GroupRows(rows, keyColumn)
	if groups.Len() == 0 {
		return nil, ErrNothingToImport
	}

	resp := &ImportPreview{
		Summary: PreviewSummary{
			Rows:        len(rows),
			DroppedRows: groups.Dropped,
			Products:    groups.Len(),
		},
		NewSamples:       []ProductPreview{},
		ExistingSamples:  []ProductPreview{},
		InvalidSamples:   []ProductPreview{},
		ExistingSKUs:     []string{},
		DuplicateSamples: []DuplicatePreview{},
	}

	type planned struct {
		preview ProductPreview
		skus    []string
	}
	var valid []planned
	skuOwners := make(map[string][]string) // sku -> product keys, in file order
	var handles []string

	for _, g := range groups.Items {
		plan, err := NormalizeProductGroup(g)
		if err != nil {
			resp.Summary.Invalid++
			if len(resp.InvalidSamples) < maxInvalidSamples {
				resp.InvalidSamples = append(resp.InvalidSamples, ProductPreview{
					Key:   g.Key,
					Rows:  len(g.Rows),
					Error: err.Error(),
				})
			}
			continue
		}

		p := planned{preview: ProductPreview{
			Key:      plan.Key,
			Handle:   plan.Product.Handle,
			Rows:     plan.Rows,
			Variants: len(plan.Variants),
		}}
		for _, v := range plan.Variants {
			if !v.Variant.Sku.Valid {
				continue
			}
			sku := v.Variant.Sku.String
			p.skus = append(p.skus, sku)
			skuOwners[sku] = append(skuOwners[sku], plan.Key)
		}
		resp.Summary.Variants += len(plan.Variants)
		handles = append(handles, plan.Product.Handle)
		valid = append(valid, p)
	}

	q := db.New(s.db)
	storedHandles, err := lookupExisting(ctx, handles, q.ExistingHandles)
	if err != nil {
		return nil, classify(err, "product", "", "check existing handles", false)
	}

	skus := make([]string, 0, len(skuOwners))
	for sku := range skuOwners {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	storedSKUs, err := lookupExisting(ctx, skus, q.ExistingSKUs)
	if err != nil {
		return nil, classify(err, "product", "", "check existing skus", false)
	}

	for _, p := range valid {
		if storedHandles[p.preview.Handle] {
			resp.Summary.Existing++
			if len(resp.ExistingSamples) < maxExistingSamples {
				resp.ExistingSamples = append(resp.ExistingSamples, p.preview)
			}
			continue
		}
		resp.Summary.NewProducts++
		if len(resp.NewSamples) < maxNewSamples {
			resp.NewSamples = append(resp.NewSamples, p.preview)
		}
	}

	for _, sku := range skus {
		if storedSKUs[sku] {
			resp.Summary.ExistingSKUs++
			if len(resp.ExistingSKUs) < maxExistingSKUs {
				resp.ExistingSKUs = append(resp.ExistingSKUs, sku)
			}
		}
		if owners := skuOwners[sku]; len(owners) > 1 {
			resp.Summary.DuplicateSKUs++
			if len(resp.DuplicateSamples) < maxDuplicateSamples {
				resp.DuplicateSamples = append(resp.DuplicateSamples, DuplicatePreview{SKU: sku, Products: owners})
			}
		}
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	logging.FromContext(ctx).Debug("import preview",
		"products", resp.Summary.Products,
		"new", resp.Summary.NewProducts,
		"existing", resp.Summary.Existing,
		"invalid", resp.Summary.Invalid,
		"duration_ms", resp.ProcessingTimeMs,
	)
	return resp, nil
}

// lookupExisting runs lookup over keys in batches and returns the keys found.
func lookupExisting(ctx context.Context, keys []string, lookup func(context.Context, []string) ([]string, error)) (map[string]bool, error) {
	found := make(map[string]bool)
	for start := 0; start < len(keys); start += keyBatchSize {
		end := min(start+keyBatchSize, len(keys))
		got, err := lookup(ctx, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", start/keyBatchSize, err)
		}
		for _, k := range got {
			found[k] = true
		}
	}
	return found, nil
}
