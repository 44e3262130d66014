package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewImport(t *testing.T) {
	fdb := newFakeDB()
	fdb.stored = map[string][]string{
		"handle": {"boots"},
		"sku":    {"SC-1"},
	}
	svc := newTestService(t, fdb, PolicyIsolate)

	rows := append(catalogRows(),
		Record{ColHandle: "shawl", ColTitle: "Shawl", ColVariantSKU: "SH-1"},
	)
	preview, err := svc.PreviewImport(context.Background(), rows, "")
	require.NoError(t, err)

	s := preview.Summary
	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 4, s.Products)
	assert.Equal(t, 3, s.NewProducts)
	assert.Equal(t, 1, s.Existing)
	assert.Equal(t, 0, s.Invalid)
	assert.Equal(t, 5, s.Variants)
	assert.Equal(t, 1, s.ExistingSKUs)
	assert.Equal(t, 1, s.DuplicateSKUs)

	require.Len(t, preview.ExistingSamples, 1)
	assert.Equal(t, "boots", preview.ExistingSamples[0].Handle)
	assert.Equal(t, 2, preview.ExistingSamples[0].Variants)
	assert.Equal(t, []string{"SC-1"}, preview.ExistingSKUs)
	require.Len(t, preview.DuplicateSamples, 1)
	assert.Equal(t, DuplicatePreview{SKU: "SH-1", Products: []string{"shirt", "shawl"}}, preview.DuplicateSamples[0])

	// Nothing was written.
	assert.Equal(t, 0, fdb.begins)
	assert.Empty(t, fdb.committed)
	assert.Equal(t, 2, fdb.queries)
}

func TestPreviewImport_NothingToImport(t *testing.T) {
	svc := newTestService(t, newFakeDB(), PolicyIsolate)

	_, err := svc.PreviewImport(context.Background(), []Record{{ColTitle: "orphan"}}, "")
	assert.True(t, errors.Is(err, ErrNothingToImport))
}

func TestLookupExisting_Batches(t *testing.T) {
	keys := make([]string, keyBatchSize+5)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}

	var calls []int
	found, err := lookupExisting(context.Background(), keys, func(_ context.Context, batch []string) ([]string, error) {
		calls = append(calls, len(batch))
		return batch[:1], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{keyBatchSize, 5}, calls)
	assert.True(t, found["k0"])
	assert.True(t, found[fmt.Sprintf("k%d", keyBatchSize)])
	assert.Len(t, found, 2)

	_, err = lookupExisting(context.Background(), keys, func(context.Context, []string) ([]string, error) {
		return nil, errors.New("connection reset")
	})
	assert.ErrorContains(t, err, "batch 0: connection reset")
}
