package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with initial data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "master",
				Usage: "Seed master data (pens and payer accounts)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing master seed data",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: seedMaster,
			},
			{
				Name:  "demo",
				Usage: "Seed a demo lot with mortality and finance entries",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: seedDemo,
			},
			{
				Name:  "all",
				Usage: "Seed master data and demo data",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing master seed data",
						Value:   "./data/seeds/master_data",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := seedMaster(c); err != nil {
						return fmt.Errorf("error seeding master data: %w", err)
					}
					if err := seedDemo(c); err != nil {
						return fmt.Errorf("error seeding demo data: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedMaster(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting database seeding...")

	if err := seedPens(ctx, tx, filepath.Join(dataDir, "pens.csv")); err != nil {
		return fmt.Errorf("failed to seed pens: %w", err)
	}
	if err := seedPayerAccounts(ctx, tx, filepath.Join(dataDir, "payer_accounts.csv")); err != nil {
		return fmt.Errorf("failed to seed payer accounts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// seedPens loads the pen directory from a CSV with columns code,capacity.
func seedPens(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding pens from %s\n", filePath)

	const query = `
		INSERT INTO pens (code, capacity, status)
		VALUES ($1, $2, 'AVAILABLE')
		ON CONFLICT (code) DO UPDATE SET
			capacity = EXCLUDED.capacity,
			updated_at = NOW()
	`

	count := 0
	err := forEachCSVRecord(filePath, func(record []string) error {
		if len(record) < 2 {
			return fmt.Errorf("invalid pen record (expected code,capacity): %v", record)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return fmt.Errorf("invalid capacity for pen %s: %w", record[0], err)
		}
		if _, err := tx.ExecContext(ctx, query, strings.TrimSpace(record[0]), capacity); err != nil {
			return fmt.Errorf("failed to upsert pen %s: %w", record[0], err)
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Successfully seeded pens (%d records)\n", count)
	return nil
}

// seedPayerAccounts loads payer accounts from a CSV with columns name,document.
func seedPayerAccounts(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding payer accounts from %s\n", filePath)

	const query = `
		INSERT INTO payer_accounts (name, document)
		VALUES ($1, $2)
		ON CONFLICT (document) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
	`

	count := 0
	err := forEachCSVRecord(filePath, func(record []string) error {
		if len(record) < 2 {
			return fmt.Errorf("invalid payer account record (expected name,document): %v", record)
		}
		if _, err := tx.ExecContext(ctx, query,
			strings.TrimSpace(record[0]), strings.TrimSpace(record[1])); err != nil {
			return fmt.Errorf("failed to upsert payer account %s: %w", record[0], err)
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Successfully seeded payer accounts (%d records)\n", count)
	return nil
}

// seedDemo inserts one confirmed lot against the first payer account so a
// fresh environment has something to exercise the lifecycle with.
func seedDemo(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var payerID int64
	if err := db.QueryRowContext(ctx,
		"SELECT id FROM payer_accounts ORDER BY id LIMIT 1").Scan(&payerID); err != nil {
		return fmt.Errorf("no payer accounts found, run the master seed first: %w", err)
	}

	const query = `
		INSERT INTO lots (
			lot_code, status, vendor_id, payer_account_id,
			initial_quantity, current_quantity, death_count,
			purchase_weight, average_weight, carcass_yield, price_per_arroba,
			purchase_value, freight_cost, commission, total_cost, purchase_date
		)
		VALUES ($1, 'CONFIRMED', 1, $2, 100, 100, 0,
			45000, 450, 50, 180, 270000, 3500, 2700, 276200, NOW())
		ON CONFLICT (lot_code) DO NOTHING
	`

	if _, err := db.ExecContext(ctx, query, "LOT-DEMO001", payerID); err != nil {
		return fmt.Errorf("failed to insert demo lot: %w", err)
	}

	log.Println("Demo data seeded successfully!")
	return nil
}

func forEachCSVRecord(filePath string, fn func(record []string) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	return nil
}
