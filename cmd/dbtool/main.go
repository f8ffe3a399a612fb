package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/platform/db"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	driver   string
	dsn      string
	seedPath string
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Prepare the parcel dispatch database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if driver != "sqlite" && driver != "postgres" {
			return fmt.Errorf("unsupported driver %q", driver)
		}
		if dsn == "" {
			return fmt.Errorf("--dsn is required")
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(s store) error {
			log.Println("Initializing database schema...")
			if err := s.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Println("Schema ready.")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create tables and load the dataset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(s store) error {
			if err := s.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Printf("Seeding database from %s...", seedPath)
			if err := s.seed(cmd.Context(), seedPath); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Println("Seeding complete.")
			return nil
		})
	},
}

// store hides the dialect behind init and seed.
type store struct {
	migrate func(ctx context.Context) error
	seed    func(ctx context.Context, path string) error
	close   func()
}

func withStore(ctx context.Context, fn func(store) error) error {
	var s store

	switch driver {
	case "postgres":
		pool, err := db.OpenPool(ctx, dsn)
		if err != nil {
			return err
		}
		repo := repositories.NewPgRepository(pool)
		s = store{
			migrate: repo.Migrate,
			seed: func(ctx context.Context, path string) error {
				data, err := repositories.ReadSeed(path)
				if err != nil {
					return err
				}
				return repo.Seed(ctx, data)
			},
			close: pool.Close,
		}
	default:
		conn, err := db.OpenSqlite(dsn)
		if err != nil {
			return err
		}
		s = store{
			migrate: func(ctx context.Context) error { return repositories.InitSchema(ctx, conn) },
			seed: func(ctx context.Context, path string) error {
				return repositories.SeedFromJSON(ctx, conn, path)
			},
			close: func() { _ = conn.Close() },
		}
	}
	defer s.close()

	return fn(s)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	rootCmd.PersistentFlags().StringVar(&driver, "driver", config.Get("DISPATCH_STORE_DRIVER", "sqlite"), "sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", config.Get("DATABASE_URL", "data/app.db"), "sqlite path or postgres URL")
	seedCmd.Flags().StringVar(&seedPath, "seed", config.Get("SEED_PATH", "data/seeds/dataset.json"), "dataset JSON file")

	rootCmd.AddCommand(initCmd, seedCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
