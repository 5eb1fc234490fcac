package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/roadmap"
)

// userRow maps the users table.
type userRow struct {
	UID         string    `gorm:"column:uid;primaryKey"`
	Email       string    `gorm:"column:email"`
	DisplayName string    `gorm:"column:display_name"`
	PhotoURL    string    `gorm:"column:photo_url"`
	Provider    string    `gorm:"column:provider"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now()"`
}

func (userRow) TableName() string { return "users" }

// progressRow maps the user_progress table.
type progressRow struct {
	UserUID            string         `gorm:"column:user_uid;primaryKey"`
	Goal               string         `gorm:"column:goal"`
	SkillLevel         string         `gorm:"column:skill_level"`
	SelectedSubjects   datatypes.JSON `gorm:"column:selected_subjects;type:jsonb;not null;default:'[]'"`
	Roadmap            datatypes.JSON `gorm:"column:roadmap;type:jsonb"`
	CurrentModule      *string        `gorm:"column:current_module"`
	CompletedModules   datatypes.JSON `gorm:"column:completed_modules;type:jsonb;not null;default:'[]'"`
	QuizScores         datatypes.JSON `gorm:"column:quiz_scores;type:jsonb;not null;default:'{}'"`
	OverallProgress    float64        `gorm:"column:overall_progress;not null;default:0"`
	RoadmapGeneratedAt *time.Time     `gorm:"column:roadmap_generated_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;not null;default:now()"`
}

func (progressRow) TableName() string { return "user_progress" }

// GormRepository stores progress in Postgres.
type GormRepository struct {
	db  *gorm.DB
	log *logging.Logger
	now func() time.Time
}

// gormWriter routes gorm's own logging into the application logger.
type gormWriter struct{ log *logging.Logger }

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open connects to the Postgres database at dsn.
func Open(dsn string, log *logging.Logger) (*GormRepository, error) {
	log = logging.OrNop(log).With("repo", "progress")
	gl := gormLogger.New(gormWriter{log: log}, gormLogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("connect to progress database: %w", err)
	}
	return NewGormRepository(db, log), nil
}

// NewGormRepository wraps an open connection.
func NewGormRepository(db *gorm.DB, log *logging.Logger) *GormRepository {
	return &GormRepository{db: db, log: logging.OrNop(log), now: time.Now}
}

// Migrate creates the tables when they do not exist.
func (g *GormRepository) Migrate(ctx context.Context) error {
	return classify("migrate", g.db.WithContext(ctx).AutoMigrate(&userRow{}, &progressRow{}))
}

// Close releases the connection pool.
func (g *GormRepository) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormRepository) Get(ctx context.Context, userID string) (*Record, error) {
	var row progressRow
	err := g.db.WithContext(ctx).Where("user_uid = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get progress", err)
	}
	return row.record()
}

func (g *GormRepository) SaveRoadmap(ctx context.Context, userID string, r roadmap.Roadmap, sel roadmap.Selections) (*Record, error) {
	rec := NewRecord(userID, r, sel, g.now().UTC())
	row, err := rowFromRecord(rec)
	if err != nil {
		return nil, err
	}
	err = g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"goal",
				"skill_level",
				"selected_subjects",
				"roadmap",
				"current_module",
				"completed_modules",
				"quiz_scores",
				"overall_progress",
				"roadmap_generated_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, classify("save roadmap", err)
	}
	g.log.Info("roadmap saved", "user_id", userID, "modules", len(r.Modules))
	return rec, nil
}

func (g *GormRepository) UpdateModuleProgress(ctx context.Context, userID, moduleID string, u ModuleUpdate) (*Record, error) {
	return g.mutate(ctx, "update module progress", userID, func(rec *Record, now time.Time) {
		rec.ApplyModuleUpdate(moduleID, u, now)
	})
}

func (g *GormRepository) SetCurrentModule(ctx context.Context, userID, moduleID string) (*Record, error) {
	return g.mutate(ctx, "set current module", userID, func(rec *Record, now time.Time) {
		rec.CurrentModule = moduleID
		rec.UpdatedAt = now
	})
}

// mutate loads the row under a row lock, applies fn and writes it back.
func (g *GormRepository) mutate(ctx context.Context, op, userID string, fn func(*Record, time.Time)) (*Record, error) {
	var out *Record
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row progressRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_uid = ?", userID).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		rec, err := row.record()
		if err != nil {
			return err
		}
		fn(rec, g.now().UTC())

		next, err := rowFromRecord(rec)
		if err != nil {
			return err
		}
		err = tx.Model(&progressRow{}).
			Where("user_uid = ?", userID).
			Updates(map[string]any{
				"current_module":    next.CurrentModule,
				"completed_modules": next.CompletedModules,
				"quiz_scores":       next.QuizScores,
				"overall_progress":  next.OverallProgress,
				"updated_at":        next.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (g *GormRepository) SyncUser(ctx context.Context, p UserProfile) error {
	row := &userRow{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		Provider:    p.Provider,
		UpdatedAt:   g.now().UTC(),
	}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "photo_url", "provider", "updated_at"}),
		}).
		Create(row).Error
	return classify("sync user", err)
}

// Delete removes progress before the user row, which it references.
func (g *GormRepository) Delete(ctx context.Context, userID string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_uid = ?", userID).Delete(&progressRow{}).Error; err != nil {
			return err
		}
		return tx.Where("uid = ?", userID).Delete(&userRow{}).Error
	})
	return classify("delete user data", err)
}

func (row *progressRow) record() (*Record, error) {
	rec := &Record{
		UserID:             row.UserUID,
		Goal:               row.Goal,
		SkillLevel:         row.SkillLevel,
		OverallProgress:    row.OverallProgress,
		RoadmapGeneratedAt: row.RoadmapGeneratedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.CurrentModule != nil {
		rec.CurrentModule = *row.CurrentModule
	}
	if err := decodeJSON(row.SelectedSubjects, &rec.SelectedSubjects); err != nil {
		return nil, fmt.Errorf("selected_subjects: %w", err)
	}
	if err := decodeJSON(row.CompletedModules, &rec.CompletedModules); err != nil {
		return nil, fmt.Errorf("completed_modules: %w", err)
	}
	if err := decodeJSON(row.QuizScores, &rec.QuizScores); err != nil {
		return nil, fmt.Errorf("quiz_scores: %w", err)
	}
	if len(row.Roadmap) > 0 && string(row.Roadmap) != "null" {
		var r roadmap.Roadmap
		if err := json.Unmarshal(row.Roadmap, &r); err != nil {
			return nil, fmt.Errorf("roadmap: %w", err)
		}
		rec.Roadmap = &r
	}
	return rec, nil
}

func rowFromRecord(rec *Record) (*progressRow, error) {
	row := &progressRow{
		UserUID:            rec.UserID,
		Goal:               rec.Goal,
		SkillLevel:         rec.SkillLevel,
		OverallProgress:    rec.OverallProgress,
		RoadmapGeneratedAt: rec.RoadmapGeneratedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
	if rec.CurrentModule != "" {
		cm := rec.CurrentModule
		row.CurrentModule = &cm
	}
	var err error
	if row.SelectedSubjects, err = encodeJSON(nonNil(rec.SelectedSubjects)); err != nil {
		return nil, err
	}
	if row.CompletedModules, err = encodeJSON(nonNil(rec.CompletedModules)); err != nil {
		return nil, err
	}
	scores := rec.QuizScores
	if scores == nil {
		scores = map[string]float64{}
	}
	if row.QuizScores, err = encodeJSON(scores); err != nil {
		return nil, err
	}
	if rec.Roadmap != nil {
		if row.Roadmap, err = encodeJSON(rec.Roadmap); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func encodeJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func decodeJSON(raw datatypes.JSON, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// classify tags database errors with ErrConflict or ErrRetryable where
// the Postgres error code allows.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrRetryable, err))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err)) // unique_violation
		case "23503":
			return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err)) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%s: %w", op, errors.Join(ErrRetryable, err)) // serialization/deadlock/lock_not_available
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
