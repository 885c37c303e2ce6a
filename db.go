package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// partition queries, %s is a name checked by ParsePartitionName
	createPartitionSQL = `
  CREATE TABLE IF NOT EXISTS "%s" (
  date TEXT,
  time TEXT,
  action TEXT,
  note TEXT
  )`

	dropPartitionSQL   = `DROP TABLE IF EXISTS "%s"`
	partitionExistsSQL = `SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`
	listTablesSQL      = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`

	// row queries
	insertRowSQL     = `INSERT INTO "%s" (date, time, action, note) VALUES (?, ?, ?, ?)`
	deleteRowSQL     = `DELETE FROM "%s" WHERE date = ? AND time = ? AND action = ? AND note = ?`
	deleteRowByIDSQL = `DELETE FROM "%s" WHERE rowid = ?`

	readAllRowsSQL = `
  SELECT rowid, COALESCE(date, ''), COALESCE(time, ''), COALESCE(action, ''), COALESCE(note, '')
  FROM "%s"
  ORDER BY date, time, rowid`
)

type Repo struct {
	db  *sql.DB
	log *Logger
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewRepo(dbPath string, logger *Logger) (*Repo, error) {
	if logger == nil {
		logger = DiscardLogger()
	}

	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// open database, other processes holding the file lock are waited on
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// verify connection with database
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Repo{db: db, log: logger.WithComponent("repo")}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// withConn holds one connection for the duration of fn and always returns
// it to the pool.
func (r *Repo) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		r.log.Error("failed to acquire connection", "err", err)
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func tableExists(ctx context.Context, q queryRower, name string) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, partitionExistsSQL, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking if partition exists: %w", err)
	}
	return exists, nil
}

// requirePartition validates the name and fails with ErrPartitionNotFound if
// the table is missing.
func requirePartition(ctx context.Context, q queryRower, name string) error {
	if _, _, err := ParsePartitionName(name); err != nil {
		return err
	}
	exists, err := tableExists(ctx, q, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrPartitionNotFound, name)
	}
	return nil
}

// +-------------------------+
// |                         |
// |    Partition Queries    |
// |                         |
// +-------------------------+

// checks if a partition exists by name
func (r *Repo) PartitionExists(ctx context.Context, name string) (bool, error) {
	if _, _, err := ParsePartitionName(name); err != nil {
		return false, err
	}

	var exists bool
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		exists, err = tableExists(ctx, conn, name)
		return err
	})
	return exists, err
}

// creates a partition, reports false if it was already there
func (r *Repo) CreatePartition(ctx context.Context, name string) (bool, error) {
	if _, _, err := ParsePartitionName(name); err != nil {
		return false, err
	}

	var created bool
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		exists, err := tableExists(ctx, conn, name)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := conn.ExecContext(ctx, fmt.Sprintf(createPartitionSQL, name)); err != nil {
			r.log.Error("failed to create partition", "partition", name, "err", err)
			return fmt.Errorf("failed to create partition %s: %w", name, err)
		}
		created = true
		r.log.Debug("partition created", "partition", name)
		return nil
	})
	return created, err
}

// drops a partition with all its rows, reports false if it did not exist
func (r *Repo) DropPartition(ctx context.Context, name string) (bool, error) {
	if _, _, err := ParsePartitionName(name); err != nil {
		return false, err
	}

	var dropped bool
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		exists, err := tableExists(ctx, conn, name)
		if err != nil {
			return err
		}
		if !exists {
			r.log.Debug("partition to drop does not exist", "partition", name)
			return nil
		}

		if _, err := conn.ExecContext(ctx, fmt.Sprintf(dropPartitionSQL, name)); err != nil {
			r.log.Error("failed to drop partition", "partition", name, "err", err)
			return fmt.Errorf("failed to drop partition %s: %w", name, err)
		}
		dropped = true
		r.log.Debug("partition dropped", "partition", name)
		return nil
	})
	return dropped, err
}

// get all partition names in ascending order
func (r *Repo) ListPartitions(ctx context.Context) ([]string, error) {
	var partitions []string
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listTablesSQL)
		if err != nil {
			return fmt.Errorf("failed to list partitions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			if _, _, err := ParsePartitionName(name); err != nil {
				continue
			}
			partitions = append(partitions, name)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return partitions, nil
}

// replaces all rows of a partition in one transaction
func (r *Repo) ReplacePartition(ctx context.Context, name string, entries []Entry) error {
	if _, _, err := ParsePartitionName(name); err != nil {
		return err
	}

	return r.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(dropPartitionSQL, name)); err != nil {
			return fmt.Errorf("failed to drop partition %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(createPartitionSQL, name)); err != nil {
			return fmt.Errorf("failed to create partition %s: %w", name, err)
		}

		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertRowSQL, name))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Date, e.Time, string(e.Action), e.Note); err != nil {
				return fmt.Errorf("failed to insert row into %s: %w", name, err)
			}
		}

		if err := tx.Commit(); err != nil {
			r.log.Error("failed to replace partition", "partition", name, "err", err)
			return fmt.Errorf("failed to commit partition %s: %w", name, err)
		}

		r.log.Debug("partition replaced", "partition", name, "rows", len(entries))
		return nil
	})
}

// +---------------------+
// |                     |
// |    Entry Queries    |
// |                     |
// +---------------------+

func (r *Repo) AppendRow(ctx context.Context, name string, e Entry) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		if err := requirePartition(ctx, conn, name); err != nil {
			return err
		}

		_, err := conn.ExecContext(ctx, fmt.Sprintf(insertRowSQL, name), e.Date, e.Time, string(e.Action), e.Note)
		if err != nil {
			r.log.Error("failed to insert row", "partition", name, "err", err)
			return fmt.Errorf("failed to insert row into %s: %w", name, err)
		}

		r.log.Debug("row inserted", "partition", name, "date", e.Date, "time", e.Time, "action", e.Action)
		return nil
	})
}

// DeleteRow removes every row whose four fields match e exactly, so
// duplicate entries go together. It returns the number of rows removed.
func (r *Repo) DeleteRow(ctx context.Context, name string, e Entry) (int64, error) {
	var affected int64
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		if err := requirePartition(ctx, conn, name); err != nil {
			return err
		}

		res, err := conn.ExecContext(ctx, fmt.Sprintf(deleteRowSQL, name), e.Date, e.Time, string(e.Action), e.Note)
		if err != nil {
			r.log.Error("failed to delete row", "partition", name, "err", err)
			return fmt.Errorf("failed to delete row from %s: %w", name, err)
		}

		affected, err = res.RowsAffected()
		if err != nil {
			return err
		}

		r.log.Debug("rows deleted", "partition", name, "count", affected)
		return nil
	})
	return affected, err
}

// DeleteRowByID removes exactly one row, identified by the ID it was read
// back with.
func (r *Repo) DeleteRowByID(ctx context.Context, name string, id int64) (bool, error) {
	var deleted bool
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		if err := requirePartition(ctx, conn, name); err != nil {
			return err
		}

		res, err := conn.ExecContext(ctx, fmt.Sprintf(deleteRowByIDSQL, name), id)
		if err != nil {
			r.log.Error("failed to delete row", "partition", name, "id", id, "err", err)
			return fmt.Errorf("failed to delete row %d from %s: %w", id, name, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// ReadAllRows returns the ledger of a partition ordered by date and time.
// A missing partition is ErrPartitionNotFound, an empty one is an empty slice.
func (r *Repo) ReadAllRows(ctx context.Context, name string) ([]Entry, error) {
	var entries []Entry
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		if err := requirePartition(ctx, conn, name); err != nil {
			return err
		}

		rows, err := conn.QueryContext(ctx, fmt.Sprintf(readAllRowsSQL, name))
		if err != nil {
			r.log.Error("failed to read rows", "partition", name, "err", err)
			return fmt.Errorf("failed to read rows from %s: %w", name, err)
		}
		defer rows.Close()

		entries = []Entry{}
		for rows.Next() {
			var e Entry
			var action string
			if err := rows.Scan(&e.ID, &e.Date, &e.Time, &action, &e.Note); err != nil {
				return err
			}
			e.Action = Action(action)
			entries = append(entries, e)
		}

		if err := rows.Err(); err != nil {
			return err
		}

		r.log.Debug("rows read", "partition", name, "count", len(entries))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
