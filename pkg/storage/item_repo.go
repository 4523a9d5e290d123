package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fddpipeline/pkg/model"
)

// ItemRepo persists ExtractedItems, routing normalized items to their own
// table and everything else into the section_payload JSONB catch-all
// (spec.md §4.9). Holds its own *pgxpool.Pool rather than reaching through
// package-level state, so a scheduler can own one instance per run.
type ItemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// SaveItem upserts item's payload, dispatching on Tag. One call is one
// transaction: either the normalized rows for a section land atomically or
// none do, matching the teacher's per-call Exec pattern but wrapped so a
// multi-row item (e.g. Item 20's outlet table) can't be left half-written.
func (r *ItemRepo) SaveItem(ctx context.Context, item *model.ExtractedItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	switch item.Tag {
	case model.TagItem5:
		if err := r.saveItem5(ctx, tx, item); err != nil {
			return err
		}
	case model.TagItem6:
		if err := r.saveItem6(ctx, tx, item); err != nil {
			return err
		}
	case model.TagItem7:
		if err := r.saveItem7(ctx, tx, item); err != nil {
			return err
		}
	case model.TagItem19:
		if err := r.saveItem19(ctx, tx, item); err != nil {
			return err
		}
	case model.TagItem20:
		if err := r.saveItem20(ctx, tx, item); err != nil {
			return err
		}
	case model.TagItem21:
		if err := r.saveItem21(ctx, tx, item); err != nil {
			return err
		}
	default:
		if err := r.saveOpaque(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit tx: %w", err)
	}
	return nil
}

func (r *ItemRepo) saveItem5(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM item5_fees WHERE section_id = $1`, item.SectionID); err != nil {
		return fmt.Errorf("storage: clear item5_fees: %w", err)
	}
	for _, f := range item.Item5.Fees {
		_, err := tx.Exec(ctx, `
			INSERT INTO item5_fees (section_id, name, amount_cents, refundable, conditions)
			VALUES ($1, $2, $3, $4, $5)`,
			item.SectionID, f.Name, f.AmountCents, f.Refundable, f.Conditions)
		if err != nil {
			return fmt.Errorf("storage: insert item5_fees: %w", err)
		}
	}
	return nil
}

func (r *ItemRepo) saveItem6(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM item6_fees WHERE section_id = $1`, item.SectionID); err != nil {
		return fmt.Errorf("storage: clear item6_fees: %w", err)
	}
	for _, f := range item.Item6.Fees {
		_, err := tx.Exec(ctx, `
			INSERT INTO item6_fees (section_id, name, amount_cents, amount_percentage, frequency, basis, min_cents, max_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.SectionID, f.Name, f.AmountCents, f.AmountPercentage, f.Frequency, f.Basis, f.MinCents, f.MaxCents)
		if err != nil {
			return fmt.Errorf("storage: insert item6_fees: %w", err)
		}
	}
	return nil
}

func (r *ItemRepo) saveItem7(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM item7_investment WHERE section_id = $1`, item.SectionID); err != nil {
		return fmt.Errorf("storage: clear item7_investment: %w", err)
	}
	for _, c := range item.Item7.Categories {
		_, err := tx.Exec(ctx, `
			INSERT INTO item7_investment (section_id, category, low_cents, high_cents, when_due, to_whom)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.SectionID, c.Category, c.LowCents, c.HighCents, c.WhenDue, c.ToWhom)
		if err != nil {
			return fmt.Errorf("storage: insert item7_investment: %w", err)
		}
	}
	return nil
}

func (r *ItemRepo) saveItem19(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	fpr := item.Item19
	_, err := tx.Exec(ctx, `
		INSERT INTO item19_fpr (section_id, disclosure_type, sample_size, time_period, low_cents, average_cents, median_cents, high_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (section_id) DO UPDATE SET
			disclosure_type = EXCLUDED.disclosure_type,
			sample_size = EXCLUDED.sample_size,
			time_period = EXCLUDED.time_period,
			low_cents = EXCLUDED.low_cents,
			average_cents = EXCLUDED.average_cents,
			median_cents = EXCLUDED.median_cents,
			high_cents = EXCLUDED.high_cents`,
		item.SectionID, fpr.DisclosureType, fpr.SampleSize, fpr.TimePeriod,
		fpr.LowCents, fpr.AverageCents, fpr.MedianCents, fpr.HighCents)
	if err != nil {
		return fmt.Errorf("storage: upsert item19_fpr: %w", err)
	}
	return nil
}

func (r *ItemRepo) saveItem20(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM item20_outlets WHERE section_id = $1`, item.SectionID); err != nil {
		return fmt.Errorf("storage: clear item20_outlets: %w", err)
	}
	for _, row := range item.Item20.Rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO item20_outlets (section_id, fiscal_year, outlet_type, start_count, opened, closed, transferred_in, transferred_out, end_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.SectionID, row.FiscalYear, row.OutletType, row.Start, row.Opened, row.Closed,
			row.TransferredIn, row.TransferredOut, row.End)
		if err != nil {
			return fmt.Errorf("storage: insert item20_outlets: %w", err)
		}
	}
	return nil
}

func (r *ItemRepo) saveItem21(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM item21_financials WHERE section_id = $1`, item.SectionID); err != nil {
		return fmt.Errorf("storage: clear item21_financials: %w", err)
	}
	for _, y := range item.Item21.Years {
		_, err := tx.Exec(ctx, `
			INSERT INTO item21_financials (section_id, fiscal_year, total_assets_cents, total_liabilities_cents, total_equity_cents, revenue_cents, net_income_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.SectionID, y.FiscalYear, y.TotalAssetsCents, y.TotalLiabilitiesCents, y.TotalEquityCents,
			y.RevenueCents, y.NetIncomeCents)
		if err != nil {
			return fmt.Errorf("storage: insert item21_financials: %w", err)
		}
	}
	return nil
}

// saveOpaque upserts the catch-all JSONB row, matching the teacher's
// analysis_repo.go Save: a single ON CONFLICT DO UPDATE over a JSONB
// column keyed by the natural id (here, section_id).
func (r *ItemRepo) saveOpaque(ctx context.Context, tx pgx.Tx, item *model.ExtractedItem) error {
	payload := item.Opaque
	if payload == nil {
		var err error
		payload, err = json.Marshal(map[string]interface{}{})
		if err != nil {
			return fmt.Errorf("storage: marshal empty opaque payload: %w", err)
		}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO section_payload (section_id, item_no, schema_version, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (section_id) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			payload = EXCLUDED.payload`,
		item.SectionID, item.ItemNo, item.SchemaVersion, payload)
	if err != nil {
		return fmt.Errorf("storage: upsert section_payload: %w", err)
	}
	return nil
}
