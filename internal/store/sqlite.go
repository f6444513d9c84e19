// Package store persists analysed contracts and their clauses in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/lexguard/internal/model"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a contract id is unknown
var ErrNotFound = errors.New("contract not found")

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path. ":memory:" is accepted.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; also keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveContract inserts or replaces a contract together with all its clauses
func (s *Store) SaveContract(ctx context.Context, c *model.Contract) error {
	if err := c.ValidateOrder(); err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	parties, err := json.Marshal(nonNil(c.Parties))
	if err != nil {
		return fmt.Errorf("encode parties: %w", err)
	}
	keyTerms, err := json.Marshal(c.KeyTerms)
	if err != nil {
		return fmt.Errorf("encode key terms: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clauses WHERE contract_id = ?", c.ID); err != nil {
		return fmt.Errorf("clear clauses: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO contracts (id, filename, title, parties, key_terms, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET filename = excluded.filename, title = excluded.title,
		 parties = excluded.parties, key_terms = excluded.key_terms, uploaded_at = excluded.uploaded_at`,
		c.ID, c.Filename, c.Title, string(parties), string(keyTerms), c.UploadedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clauses (id, contract_id, order_index, text, category, risk_score, risk_level, reasons)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare clause insert: %w", err)
	}
	defer stmt.Close()

	for _, cl := range c.Clauses {
		reasons, err := json.Marshal(nonNil(cl.Reasons))
		if err != nil {
			return fmt.Errorf("encode reasons: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, cl.ID, c.ID, cl.Index, cl.Text,
			string(cl.Category), cl.RiskScore, string(cl.RiskLevel), string(reasons)); err != nil {
			return fmt.Errorf("insert clause %d: %w", cl.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetContract loads a contract with its clauses in order
func (s *Store) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var (
		c        model.Contract
		parties  string
		keyTerms string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, filename, title, parties, key_terms, uploaded_at FROM contracts WHERE id = ?", id,
	).Scan(&c.ID, &c.Filename, &c.Title, &parties, &keyTerms, &c.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contract %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if err := json.Unmarshal([]byte(parties), &c.Parties); err != nil {
		return nil, fmt.Errorf("decode parties: %w", err)
	}
	if err := json.Unmarshal([]byte(keyTerms), &c.KeyTerms); err != nil {
		return nil, fmt.Errorf("decode key terms: %w", err)
	}

	clauses, err := s.clauses(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Clauses = clauses
	return &c, nil
}

func (s *Store) clauses(ctx context.Context, contractID string) ([]model.Clause, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_index, text, category, risk_score, risk_level, reasons
		 FROM clauses WHERE contract_id = ? ORDER BY order_index`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	clauses := []model.Clause{}
	for rows.Next() {
		var (
			cl       model.Clause
			category string
			level    string
			reasons  string
		)
		if err := rows.Scan(&cl.ID, &cl.Index, &cl.Text, &category, &cl.RiskScore, &level, &reasons); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		if err := json.Unmarshal([]byte(reasons), &cl.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons: %w", err)
		}
		cl.ContractID = contractID
		cl.Category = model.Category(category)
		cl.RiskLevel = model.RiskLevel(level)
		clauses = append(clauses, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	return clauses, nil
}

// ListContracts returns stored contracts, newest first, with clause and
// risk level counts
func (s *Store) ListContracts(ctx context.Context) ([]model.ContractInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, title, uploaded_at FROM contracts ORDER BY uploaded_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	infos := []model.ContractInfo{}
	index := make(map[string]int)
	for rows.Next() {
		var info model.ContractInfo
		if err := rows.Scan(&info.ID, &info.Filename, &info.Title, &info.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		info.RiskCounts = make(map[model.RiskLevel]int)
		index[info.ID] = len(infos)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	rows.Close()

	counts, err := s.db.QueryContext(ctx,
		"SELECT contract_id, risk_level, COUNT(*) FROM clauses GROUP BY contract_id, risk_level")
	if err != nil {
		return nil, fmt.Errorf("count clauses: %w", err)
	}
	defer counts.Close()

	for counts.Next() {
		var (
			id    string
			level string
			n     int
		)
		if err := counts.Scan(&id, &level, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		infos[i].RiskCounts[model.RiskLevel(level)] = n
		infos[i].ClauseCount += n
	}
	if err := counts.Err(); err != nil {
		return nil, fmt.Errorf("count clauses: %w", err)
	}
	return infos, nil
}

// DeleteContract removes a contract and its clauses
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clauses WHERE contract_id = ?", id); err != nil {
		return fmt.Errorf("delete clauses: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete contract %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
