package core

// writer.go executes write plans inside transactions.
//
// Protocol for one product: insert the product, its metafields, then for
// each variant the variant row followed by its image, price pair and
// shipping row. A variant whose SKU already exists is skipped together with
// its dependent rows, since they would reference a variant that was never
// written. Commit only when every statement succeeded; any error rolls back
// the whole transaction and is returned as a classified *WriteError.

import (
	"context"
	"time"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultTxTimeout bounds a transaction when the writer is built without one.
const DefaultTxTimeout = 30 * time.Second

// DefaultBatchTimeout bounds a WriteBatch transaction, which spans a whole import.
const DefaultBatchTimeout = 10 * time.Minute

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Writer runs product and order plans atomically.
type Writer struct {
	db           TxBeginner
	txTimeout    time.Duration
	batchTimeout time.Duration
}

// NewWriter creates a Writer. A non-positive txTimeout uses DefaultTxTimeout.
// Batches are bounded by DefaultBatchTimeout until SetBatchTimeout is called.
func NewWriter(db TxBeginner, txTimeout time.Duration) *Writer {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Writer{db: db, txTimeout: txTimeout, batchTimeout: DefaultBatchTimeout}
}

// SetBatchTimeout changes the bound of WriteBatch transactions. A
// non-positive d restores DefaultBatchTimeout.
func (w *Writer) SetBatchTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultBatchTimeout
	}
	w.batchTimeout = d
}

// inTx runs fn in one transaction bounded by timeout. fn must issue its
// statements with the context it is given so the bound covers them.
// The connection is taken from the pool only here and always released.
func (w *Writer) inTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, q *db.Queries) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return err
	}
	// No-op once committed. Uses a fresh context so rollback still runs after a timeout.
	defer tx.Rollback(context.WithoutCancel(ctx))

	if err := fn(ctx, db.New(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// WriteProduct writes one product plan in its own transaction.
func (w *Writer) WriteProduct(ctx context.Context, plan ProductPlan) (ProductResult, error) {
	var res ProductResult
	err := w.inTx(ctx, w.txTimeout, func(ctx context.Context, q *db.Queries) error {
		var err error
		res, err = writeProduct(ctx, q, plan)
		return err
	})
	if err != nil {
		return ProductResult{}, classify(err, "product", plan.Key, "commit", false)
	}
	return res, nil
}

// BatchResult is the outcome of WriteBatch.
type BatchResult struct {
	Results []ProductResult
	// FailedIndex is the plan that caused the rollback, or -1.
	FailedIndex int
}

// WriteBatch writes every plan in a single transaction bounded by the batch
// timeout. The first failure rolls back all of them; FailedIndex names the
// plan that failed.
func (w *Writer) WriteBatch(ctx context.Context, plans []ProductPlan, progress func(i int, res ProductResult)) (BatchResult, error) {
	out := BatchResult{FailedIndex: -1}
	var failedKey string

	err := w.inTx(ctx, w.batchTimeout, func(ctx context.Context, q *db.Queries) error {
		for i, plan := range plans {
			res, err := writeProduct(ctx, q, plan)
			if err != nil {
				out.FailedIndex = i
				failedKey = plan.Key
				return err
			}
			out.Results = append(out.Results, res)
			if progress != nil {
				progress(i, res)
			}
		}
		return nil
	})
	if err != nil {
		out.Results = nil
		return out, classify(err, "batch", failedKey, "commit", false)
	}
	return out, nil
}

func writeProduct(ctx context.Context, q *db.Queries, plan ProductPlan) (ProductResult, error) {
	key := plan.Key
	res := ProductResult{
		ProductID:  plan.Product.ProductID,
		Handle:     plan.Product.Handle,
		VariantIDs: make([]uuid.UUID, 0, len(plan.Variants)),
	}

	if err := q.InsertProduct(ctx, plan.Product); err != nil {
		return res, classify(err, "product", key, "insert product", true)
	}

	if plan.Metafields != nil {
		if err := q.InsertProductMetafields(ctx, plan.Product.ProductID, plan.Metafields); err != nil {
			return res, classify(err, "product", key, "insert metafields", false)
		}
	}

	for _, vp := range plan.Variants {
		n, err := q.InsertVariant(ctx, vp.Variant)
		if err != nil {
			return res, classify(err, "product", key, "insert variant", false)
		}
		if n == 0 {
			res.SkippedSKUs = append(res.SkippedSKUs, vp.Variant.Sku.String)
			continue
		}
		res.VariantIDs = append(res.VariantIDs, vp.Variant.VariantID)

		if vp.Image != nil {
			if err := q.InsertProductImage(ctx, *vp.Image); err != nil {
				return res, classify(err, "product", key, "insert image", false)
			}
			res.Images++
		}

		for _, price := range vp.Prices {
			n, err := q.InsertVariantPrice(ctx, price)
			if err != nil {
				return res, classify(err, "product", key, "insert price "+price.CountryCode, false)
			}
			res.Prices += int(n)
		}

		if vp.Shipping != nil {
			if err := q.InsertShippingDetail(ctx, *vp.Shipping); err != nil {
				return res, classify(err, "product", key, "insert shipping", false)
			}
			res.Shipping++
		}
	}

	return res, nil
}

// WriteOrder writes an order and all of its items in one transaction.
func (w *Writer) WriteOrder(ctx context.Context, plan OrderPlan) (OrderResult, error) {
	key := plan.Order.OrderID.String()
	if len(plan.Items) == 0 {
		return OrderResult{}, validationError("order", key, "order has no items")
	}

	var res OrderResult
	err := w.inTx(ctx, w.txTimeout, func(ctx context.Context, q *db.Queries) error {
		order, err := q.InsertOrder(ctx, plan.Order)
		if err != nil {
			return classify(err, "order", key, "insert order", true)
		}

		items := make([]db.OrderItem, 0, len(plan.Items))
		for _, item := range plan.Items {
			row, err := q.InsertOrderItem(ctx, item)
			if err != nil {
				return classify(err, "order", key, "insert item "+item.ProductID.String(), false)
			}
			items = append(items, row)
		}

		res = OrderResult{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return OrderResult{}, classify(err, "order", key, "commit", false)
	}
	return res, nil
}
