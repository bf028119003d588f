package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertPublisherDomains inserts or refreshes allowlisted publisher domains.
func (d *Database) UpsertPublisherDomains(rows []PublisherDomain) error {
	if d == nil {
		return errors.New("database is nil")
	}
	cleaned := make([]PublisherDomain, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		row.Domain = strings.ToLower(strings.TrimSpace(row.Domain))
		if row.Domain == "" {
			continue
		}
		if _, dup := seen[row.Domain]; dup {
			continue
		}
		seen[row.Domain] = struct{}{}
		row.UpdatedAt = time.Now()
		cleaned = append(cleaned, row)
	}
	if len(cleaned) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		// Batch insert to avoid SQLite variable limit (999)
		const batchSize = 250
		for start := 0; start < len(cleaned); start += batchSize {
			end := start + batchSize
			if end > len(cleaned) {
				end = len(cleaned)
			}
			batch := cleaned[start:end]
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "domain"}},
				DoUpdates: clause.AssignmentColumns([]string{"publisher", "source", "updated_at"}),
			}).CreateInBatches(batch, batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPublisherDomains returns a paged set of publisher domains.
func (d *Database) ListPublisherDomains(offset, limit int) ([]PublisherDomain, int64, error) {
	if d == nil {
		return nil, 0, errors.New("database is nil")
	}
	var total int64
	if err := d.gorm.Model(&PublisherDomain{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&PublisherDomain{}).Order("domain ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	var rows []PublisherDomain
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// PublisherDomainNames returns just the domain strings, for seeding the
// in-memory allowlist at startup.
func (d *Database) PublisherDomainNames() ([]string, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var names []string
	if err := d.gorm.Model(&PublisherDomain{}).Order("domain ASC").Pluck("domain", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// CountPublisherDomains returns the allowlist size.
func (d *Database) CountPublisherDomains() (int64, error) {
	var count int64
	if err := d.gorm.Model(&PublisherDomain{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
