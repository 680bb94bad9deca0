package medicine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists medicine records in PostgreSQL through database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const medicineColumns = `
	id, declared_by, name, amm, batch_number, expiration_date, quantity,
	is_imported, country_of_origin, status, declaration_code,
	pharmacy_reviewed_by, pharmacy_reviewed_at, pharmacy_notes,
	regulatory_reviewed_by, regulatory_reviewed_at, regulatory_notes,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.DeclaredBy,
		rec.Name,
		rec.AMM,
		rec.BatchNumber,
		rec.ExpirationDate,
		rec.Quantity,
		rec.IsImported,
		nullString(rec.CountryOfOrigin),
		string(rec.Status),
		rec.DeclarationCode,
		nullUUID(rec.PharmacyReviewedBy),
		nullTime(rec.PharmacyReviewedAt),
		nullString(rec.PharmacyNotes),
		nullUUID(rec.RegulatoryReviewedBy),
		nullTime(rec.RegulatoryReviewedAt),
		nullString(rec.RegulatoryNotes),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *Record) error {
	query := `
		UPDATE medicines SET
			status = $2,
			pharmacy_reviewed_by = $3,
			pharmacy_reviewed_at = $4,
			pharmacy_notes = $5,
			regulatory_reviewed_by = $6,
			regulatory_reviewed_at = $7,
			regulatory_notes = $8,
			updated_at = $9
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.Status),
		nullUUID(rec.PharmacyReviewedBy),
		nullTime(rec.PharmacyReviewedAt),
		nullString(rec.PharmacyNotes),
		nullUUID(rec.RegulatoryReviewedBy),
		nullTime(rec.RegulatoryReviewedAt),
		nullString(rec.RegulatoryNotes),
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update medicine rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Record, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE status = $1 ORDER BY created_at, id`
	return s.list(ctx, query, string(status))
}

func (s *PostgresStore) ListByDeclarer(ctx context.Context, declaredBy uuid.UUID) ([]*Record, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE declared_by = $1 ORDER BY created_at, id`
	return s.list(ctx, query, declaredBy)
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medicines: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		status     string
		origin     sql.NullString
		phBy, rgBy uuid.NullUUID
		phAt, rgAt sql.NullTime
		phNotes    sql.NullString
		rgNotes    sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.DeclaredBy,
		&rec.Name,
		&rec.AMM,
		&rec.BatchNumber,
		&rec.ExpirationDate,
		&rec.Quantity,
		&rec.IsImported,
		&origin,
		&status,
		&rec.DeclarationCode,
		&phBy,
		&phAt,
		&phNotes,
		&rgBy,
		&rgAt,
		&rgNotes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.CountryOfOrigin = origin.String
	rec.PharmacyNotes = phNotes.String
	rec.RegulatoryNotes = rgNotes.String
	if phBy.Valid {
		rec.PharmacyReviewedBy = &phBy.UUID
	}
	if phAt.Valid {
		t := phAt.Time
		rec.PharmacyReviewedAt = &t
	}
	if rgBy.Valid {
		rec.RegulatoryReviewedBy = &rgBy.UUID
	}
	if rgAt.Valid {
		t := rgAt.Time
		rec.RegulatoryReviewedAt = &t
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
