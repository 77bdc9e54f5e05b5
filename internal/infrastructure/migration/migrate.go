package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/exp/slog"
)

// ErrDirty схема осталась в промежуточном состоянии после упавшей миграции, нужна ручная починка через migrate force
var ErrDirty = errors.New("database schema is dirty")

// Migrator часть migrate.Migrate, которой пользуется сервер
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// Engine открывает мигратор; в тестах подменяется
type Engine func(sourceURL, databaseURL string) (Migrator, error)

func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Result версии схемы до и после Up; 0 значит пустую базу
type Result struct {
	From uint
	To   uint
}

func (r Result) Applied() bool { return r.From != r.To }

// Runner применяет миграции таблиц hemapp из каталога dir
type Runner struct {
	dir    string
	dbURI  string
	engine Engine
	log    *slog.Logger
}

func NewRunner(dir, dbURI string, engine Engine, log *slog.Logger) *Runner {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Runner{
		dir:    dir,
		dbURI:  dbURI,
		engine: engine,
		log:    log.With("component", "migration"),
	}
}

func (r *Runner) Up() (res Result, err error) {
	m, err := r.engine("file://"+r.dir, r.dbURI)
	if err != nil {
		return res, fmt.Errorf("open migrations %s: %w", r.dir, err)
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			serr = fmt.Errorf("close migration source: %w", serr)
		}
		if dberr != nil {
			dberr = fmt.Errorf("close migration database: %w", dberr)
		}
		err = errors.Join(err, serr, dberr)
	}()

	res.From, err = r.version(m)
	if err != nil {
		return res, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("migration up from version %d: %w", res.From, err)
	}

	res.To, err = r.version(m)
	if err != nil {
		return res, err
	}

	if res.Applied() {
		r.log.Info("schema migrated", "from", res.From, "to", res.To)
	} else {
		r.log.Debug("schema up to date", "version", res.To)
	}
	return res, nil
}

func (r *Runner) version(m Migrator) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("%w at version %d", ErrDirty, v)
	}
	return v, nil
}
