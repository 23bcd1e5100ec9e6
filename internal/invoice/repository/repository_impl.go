package repository

import (
	"context"
	"time"

	"github.com/FresyMetal/isr-crm/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertWithLines(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := invoice.Lines
		invoice.Lines = nil
		if err := tx.Create(invoice).Error; err != nil {
			invoice.Lines = lines
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				invoice.Lines = lines
				return err
			}
		}
		invoice.Lines = lines
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	if err := r.loadLines(ctx, db, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE number = ?`,
		number,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	if err := r.loadLines(ctx, db, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindPendingByCustomer(ctx context.Context, db *gorm.DB, customerID int64) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE customer_id = ? AND state = ?
		 ORDER BY issue_date DESC, id DESC
		 LIMIT 1`,
		customerID,
		domain.InvoiceStatePending,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindLastByCustomer(ctx context.Context, db *gorm.DB, customerID int64) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE customer_id = ?
		 ORDER BY issue_date DESC, id DESC
		 LIMIT 1`,
		customerID,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE customer_id = ?
		 ORDER BY issue_date DESC, id DESC`,
		customerID,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListByPeriod(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices
		 WHERE period_from >= ? AND period_from < ?
		 ORDER BY customer_id ASC, id ASC`,
		from,
		to,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateState(ctx context.Context, db *gorm.DB, id int64, state domain.InvoiceState, at time.Time) error {
	switch state {
	case domain.InvoiceStatePaid:
		return db.WithContext(ctx).Exec(
			`UPDATE invoices
			 SET state = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			state, at, id,
		).Error
	case domain.InvoiceStateCancelled:
		return db.WithContext(ctx).Exec(
			`UPDATE invoices
			 SET state = ?, cancelled_at = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			state, at, id,
		).Error
	default:
		return db.WithContext(ctx).Exec(
			`UPDATE invoices
			 SET state = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			state, id,
		).Error
	}
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, asOf time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET state = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE state = ? AND due_date < ?`,
		domain.InvoiceStateOverdue,
		domain.InvoiceStatePending,
		asOf,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) loadLines(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Raw(
		`SELECT * FROM invoice_lines WHERE invoice_id = ? ORDER BY id ASC`,
		invoice.ID,
	).Scan(&invoice.Lines).Error
}
