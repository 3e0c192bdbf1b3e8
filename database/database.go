package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"road-condition-service/config"
	"road-condition-service/models"
)

// ErrLocationNotFound is returned by GetLocationAverage for a location id
// that has no reports yet. The batch lookup never returns it; missing ids are
// silently dropped from its result instead.
var ErrLocationNotFound = errors.New("location not found")

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Infof("Database connected successfully to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying sql.DB for direct queries
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// EnsureTables creates the service tables if they don't exist
func (d *Database) EnsureTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			reputation INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			INDEX idx_users_name (name)
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id VARCHAR(64) NOT NULL,
			posts INT NOT NULL DEFAULT 0,
			PRIMARY KEY (id)
		)`,
		`CREATE TABLE IF NOT EXISTS location_scores (
			location_id VARCHAR(64) NOT NULL,
			surface_damage DOUBLE NOT NULL DEFAULT 0,
			traffic_safety_risk DOUBLE NOT NULL DEFAULT 0,
			ride_discomfort DOUBLE NOT NULL DEFAULT 0,
			waterlogging DOUBLE NOT NULL DEFAULT 0,
			urgency_for_repair DOUBLE NOT NULL DEFAULT 0,
			PRIMARY KEY (location_id)
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			seq INT NOT NULL AUTO_INCREMENT,
			posted_by VARCHAR(255) NOT NULL DEFAULT '',
			location_id VARCHAR(64) NOT NULL,
			text_descr TEXT,
			images TEXT,
			surface_damage DOUBLE NOT NULL DEFAULT 0,
			traffic_safety_risk DOUBLE NOT NULL DEFAULT 0,
			ride_discomfort DOUBLE NOT NULL DEFAULT 0,
			waterlogging DOUBLE NOT NULL DEFAULT 0,
			urgency_for_repair DOUBLE NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (seq),
			INDEX idx_reports_location (location_id)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Info("Service tables created/verified successfully")
	return nil
}

// FoldInLocation folds one report's fused score vector into the location's
// running aggregate: cumulative sums plus a post count, both maintained by
// additive upserts inside a single transaction. Concurrent folds for the same
// location serialize on the row, so no update is ever lost.
func (d *Database) FoldInLocation(ctx context.Context, locationID string, fused models.ScoreVector) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin fold-in transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO locations (id, posts) VALUES (?, 1)
		ON DUPLICATE KEY UPDATE posts = posts + 1`,
		locationID)
	if err != nil {
		return fmt.Errorf("failed to update post count for location %s: %w", locationID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO location_scores
			(location_id, surface_damage, traffic_safety_risk, ride_discomfort, waterlogging, urgency_for_repair)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			surface_damage = surface_damage + VALUES(surface_damage),
			traffic_safety_risk = traffic_safety_risk + VALUES(traffic_safety_risk),
			ride_discomfort = ride_discomfort + VALUES(ride_discomfort),
			waterlogging = waterlogging + VALUES(waterlogging),
			urgency_for_repair = urgency_for_repair + VALUES(urgency_for_repair)`,
		locationID, fused.SurfaceDamage, fused.TrafficSafetyRisk, fused.RideDiscomfort,
		fused.Waterlogging, fused.UrgencyForRepair)
	if err != nil {
		return fmt.Errorf("failed to update score sums for location %s: %w", locationID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fold-in for location %s: %w", locationID, err)
	}

	return nil
}

// GetLocationAverage returns the per-category average for one location, or
// ErrLocationNotFound if the location has no reports.
func (d *Database) GetLocationAverage(ctx context.Context, locationID string) (*models.LocationAverage, error) {
	query := `
	SELECT ls.surface_damage, ls.traffic_safety_risk, ls.ride_discomfort,
	       ls.waterlogging, ls.urgency_for_repair, l.posts
	FROM location_scores ls
	JOIN locations l ON l.id = ls.location_id
	WHERE ls.location_id = ?`

	var sums models.ScoreVector
	var posts int
	err := d.db.QueryRowContext(ctx, query, locationID).Scan(
		&sums.SurfaceDamage,
		&sums.TrafficSafetyRisk,
		&sums.RideDiscomfort,
		&sums.Waterlogging,
		&sums.UrgencyForRepair,
		&posts,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to fetch aggregate for location %s: %w", locationID, err)
	}

	if posts == 0 {
		return nil, ErrLocationNotFound
	}

	return &models.LocationAverage{
		LocationID: locationID,
		Scores:     sums.DivideBy(float64(posts)),
		Posts:      posts,
	}, nil
}

// GetLocationsAverages looks up each id independently. Ids with no aggregate
// are omitted from the result, not reported as errors; the returned list can
// be shorter than the input.
func (d *Database) GetLocationsAverages(ctx context.Context, locationIDs []string) ([]models.LocationAverage, error) {
	averages := make([]models.LocationAverage, 0, len(locationIDs))
	for _, id := range locationIDs {
		avg, err := d.GetLocationAverage(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrLocationNotFound) {
				log.WithError(err).Errorf("Skipping location %s in batch lookup", id)
			}
			continue
		}
		averages = append(averages, *avg)
	}
	return averages, nil
}

// SaveReport appends one scored report to the audit table and returns its seq.
func (d *Database) SaveReport(ctx context.Context, report *models.Report) (int, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO reports
			(posted_by, location_id, text_descr, images,
			 surface_damage, traffic_safety_risk, ride_discomfort, waterlogging, urgency_for_repair)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.PostedBy,
		report.LocationID,
		report.TextDescr,
		strings.Join(report.ImageRefs, ","),
		report.FusedScores.SurfaceDamage,
		report.FusedScores.TrafficSafetyRisk,
		report.FusedScores.RideDiscomfort,
		report.FusedScores.Waterlogging,
		report.FusedScores.UrgencyForRepair,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report seq: %w", err)
	}
	return int(seq), nil
}
