package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// FindByID finds a journal entry by its ID with its lines
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.JournalEntry, error) {
	var entry finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDForTenant finds a journal entry by ID within a tenant
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.JournalEntry, error) {
	var entry finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByNumber finds a journal entry by number within a tenant
func (r *GormJournalEntryRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*finance.JournalEntry, error) {
	var entry finance.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND number = ?", tenantID, strings.ToUpper(number)).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAllForTenant finds all journal entries for a tenant with filtering
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.JournalEntry, error) {
	var entries []finance.JournalEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&finance.JournalEntry{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// NextNumber reserves the next journal entry number for a tenant.
// Format: JE-YYYY-NNNN (e.g. JE-2026-0001)
func (r *GormJournalEntryRepository) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("JE-%d-", year)

	var lastEntry finance.JournalEntry
	err := r.db.WithContext(ctx).
		Model(&finance.JournalEntry{}).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number DESC").
		First(&lastEntry).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastEntry.Number != "" {
		parts := strings.Split(lastEntry.Number, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%04d", prefix, nextNum)

	exists, err := r.existsByNumber(ctx, tenantID, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%04d", prefix, nextNum)
			exists, err = r.existsByNumber(ctx, tenantID, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

// Save creates or updates a journal entry with its lines
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(entry).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(entry.Lines))
		for i, line := range entry.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("journal_entry_id = ? AND id NOT IN ?", entry.ID, currentLineIDs).
				Delete(&finance.JournalLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("journal_entry_id = ?", entry.ID).
				Delete(&finance.JournalLine{}).Error; err != nil {
				return err
			}
		}

		for i := range entry.Lines {
			entry.Lines[i].JournalEntryID = entry.ID
			if err := tx.Save(&entry.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Count counts journal entries for a tenant matching the filter
func (r *GormJournalEntryRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&finance.JournalEntry{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPostedByAccount sums posted debit and credit totals per account
// for entries dated on or before asOf
func (r *GormJournalEntryRepository) SumPostedByAccount(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]finance.AccountBalance, error) {
	var balances []finance.AccountBalance
	if err := r.db.WithContext(ctx).
		Model(&finance.JournalLine{}).
		Select("journal_lines.account_id AS account_id, SUM(journal_lines.debit) AS total_debit, SUM(journal_lines.credit) AS total_credit").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.journal_entry_id").
		Where("journal_entries.tenant_id = ?", tenantID).
		Where("journal_entries.status = ?", finance.JournalEntryStatusPosted).
		Where("journal_entries.entry_date <= ?", asOf).
		Group("journal_lines.account_id").
		Scan(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *GormJournalEntryRepository) existsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&finance.JournalEntry{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormJournalEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, JournalEntrySortFields, "entry_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormJournalEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search over the entry number and memo
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR memo ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "reference":
			query = query.Where("reference = ?", value)
		}
	}

	return query
}

// Ensure GormJournalEntryRepository implements JournalEntryRepository
var _ finance.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
