package repository

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"hospital-records/internal/codec"
	domainRepo "hospital-records/internal/domain/repository"
	"hospital-records/internal/infrastructure/metrics"
	"hospital-records/pkg/validator"

	"github.com/sirupsen/logrus"
)

// Files is the slice of the FileStore a repository needs.
type Files interface {
	ReadLines(path string) ([]string, error)
	WriteLines(path string, lines []string) error
	CreateBackup(path string) (string, error)
}

// Deps are shared by every repository constructor.
type Deps struct {
	Files    Files
	Validate *validator.CustomValidator
	Log      *logrus.Logger
	// Backup copies the data file aside before every save.
	Backup bool
}

// entitySpec tells the generic core how to handle one entity kind.
type entitySpec[T any] struct {
	codec  codec.Codec[T]
	prefix string
	key    func(*T) string
	setKey func(*T, string)
	clone  func(T) T
	// conflict reports why candidate cannot coexist with existing (a different record).
	conflict func(candidate, existing *T) error
}

// fileRepository keeps one entity kind in memory and mirrors it to a pipe-delimited file.
//
// Every exported method holds mu for its whole body, including the lazy load, so
// operations on one repository are totally ordered. Nothing is shared across kinds.
type fileRepository[T any] struct {
	mu       sync.Mutex
	spec     entitySpec[T]
	files    Files
	validate *validator.CustomValidator
	log      *logrus.Logger
	backup   bool

	path     string
	loaded   bool
	items    []T
	lastLoad domainRepo.LoadStats
}

func newFileRepository[T any](deps Deps, path string, spec entitySpec[T]) *fileRepository[T] {
	if spec.clone == nil {
		spec.clone = func(e T) T { return e }
	}
	return &fileRepository[T]{
		spec:     spec,
		files:    deps.Files,
		validate: deps.Validate,
		log:      deps.Log,
		backup:   deps.Backup,
		path:     path,
	}
}

func (r *fileRepository[T]) EntityName() string {
	return r.spec.codec.Entity()
}

func (r *fileRepository[T]) FilePath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// SetFilePath points the repository at another file; the next call reloads from it.
func (r *fileRepository[T]) SetFilePath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	r.loaded = false
	r.items = nil
}

func (r *fileRepository[T]) LastLoad() domainRepo.LoadStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLoad
}

// Load rereads the backing file, discarding in-memory state.
func (r *fileRepository[T]) Load() (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "load", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

func (r *fileRepository[T]) Save() (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "save", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	return r.saveLocked()
}

func (r *fileRepository[T]) GetAll() ([]T, error) {
	return r.filter(func(*T) bool { return true })
}

func (r *fileRepository[T]) FindByID(id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	i := r.indexLocked(id)
	if i < 0 {
		return nil, nil
	}
	e := r.spec.clone(r.items[i])
	return &e, nil
}

func (r *fileRepository[T]) Exists(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return false, err
	}
	return r.indexLocked(id) >= 0, nil
}

func (r *fileRepository[T]) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return 0, err
	}
	return len(r.items), nil
}

func (r *fileRepository[T]) Add(e T) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "add", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	return r.addLocked(e)
}

// Create assigns the next sequential ID to e and adds it under the same lock.
func (r *fileRepository[T]) Create(e *T) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "create", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	r.spec.setKey(e, r.nextIDLocked())
	return r.addLocked(*e)
}

func (r *fileRepository[T]) NextID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return "", err
	}
	return r.nextIDLocked(), nil
}

func (r *fileRepository[T]) Update(e T) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "update", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	i := r.indexLocked(r.spec.key(&e))
	if i < 0 {
		return domainRepo.ErrNotFound
	}
	return r.replaceLocked(i, e)
}

func (r *fileRepository[T]) Modify(id string, fn func(*T) error) error {
	return r.modifyWhere("modify", func(e *T) bool { return r.spec.key(e) == id }, fn)
}

// modifyWhere is Modify for the first record matching match.
func (r *fileRepository[T]) modifyWhere(op string, match func(*T) bool, fn func(*T) error) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), op, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	i := -1
	for j := range r.items {
		if match(&r.items[j]) {
			i = j
			break
		}
	}
	if i < 0 {
		return domainRepo.ErrNotFound
	}

	id := r.spec.key(&r.items[i])
	working := r.spec.clone(r.items[i])
	if err := fn(&working); err != nil {
		if errors.Is(err, domainRepo.ErrUnchanged) {
			return nil
		}
		return err
	}
	if r.spec.key(&working) != id {
		return fmt.Errorf("%w: %s id cannot be changed", domainRepo.ErrInvalid, r.EntityName())
	}
	return r.replaceLocked(i, working)
}

func (r *fileRepository[T]) Remove(id string) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "remove", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	i := r.indexLocked(id)
	if i < 0 {
		return domainRepo.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return r.saveLocked()
}

func (r *fileRepository[T]) Clear() (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), "clear", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.loaded = true
	return r.saveLocked()
}

// filter returns copies of every record matching keep.
func (r *fileRepository[T]) filter(keep func(*T) bool) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for i := range r.items {
		if keep(&r.items[i]) {
			out = append(out, r.spec.clone(r.items[i]))
		}
	}
	return out, nil
}

// first returns a copy of the first record matching match, or nil.
func (r *fileRepository[T]) first(match func(*T) bool) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	for i := range r.items {
		if match(&r.items[i]) {
			e := r.spec.clone(r.items[i])
			return &e, nil
		}
	}
	return nil, nil
}

// transact hands fn a private copy of all records. If fn reports a change and no error,
// the copy replaces the collection and is written once. Only records fn altered are
// validated, so a pre-existing conflict between untouched rows does not block the write.
func (r *fileRepository[T]) transact(op string, fn func(items []T) (bool, error)) (err error) {
	defer func() { metrics.RecordStoreOperation(r.EntityName(), op, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}

	working := make([]T, len(r.items))
	for i := range r.items {
		working[i] = r.spec.clone(r.items[i])
	}
	changed, err := fn(working)
	if err != nil || !changed {
		return err
	}
	for i := range working {
		if r.spec.codec.Encode(working[i]) == r.spec.codec.Encode(r.items[i]) {
			continue
		}
		if err := r.checkLocked(&working[i]); err != nil {
			return err
		}
	}
	r.items = working
	return r.saveLocked()
}

func (r *fileRepository[T]) ensureLoadedLocked() error {
	if r.loaded {
		return nil
	}
	return r.loadLocked()
}

func (r *fileRepository[T]) loadLocked() error {
	entity := r.EntityName()

	lines, err := r.files.ReadLines(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.log.Debugf("No %s file at %s yet, starting empty", entity, r.path)
		r.items = nil
		r.loaded = true
		r.lastLoad = domainRepo.LoadStats{}
		metrics.RecordRecordCount(entity, 0)
		return nil
	}
	if err != nil {
		r.log.Warnf("Failed to read %s file %s: %+v", entity, r.path, err)
		return fmt.Errorf("load %s: %w", entity, err)
	}

	items := make([]T, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	dropped := 0
	for n, line := range lines {
		e, err := r.spec.codec.Decode(line)
		if errors.Is(err, codec.ErrSkipLine) {
			continue
		}
		if err != nil {
			r.log.Warnf("Dropping malformed %s record %d in %s: %v", entity, n+1, r.path, err)
			metrics.RecordParseError(entity)
			dropped++
			continue
		}
		id := r.spec.key(&e)
		if _, dup := seen[id]; dup {
			r.log.Warnf("Dropping duplicate %s id %s in %s", entity, id, r.path)
			dropped++
			continue
		}
		seen[id] = struct{}{}
		items = append(items, e)
	}

	r.items = items
	r.loaded = true
	r.lastLoad = domainRepo.LoadStats{Records: len(items), Dropped: dropped}
	metrics.RecordRecordCount(entity, len(items))
	r.log.Debugf("Loaded %d %s records from %s (%d dropped)", len(items), entity, r.path, dropped)
	return nil
}

// saveLocked rewrites the whole file. On failure the in-memory collection stays ahead of disk.
func (r *fileRepository[T]) saveLocked() error {
	entity := r.EntityName()

	if r.backup {
		if _, err := r.files.CreateBackup(r.path); err != nil {
			r.log.Warnf("Failed to back up %s file %s, saving anyway: %+v", entity, r.path, err)
			metrics.RecordBackupFailure(entity)
		}
	}

	lines := codec.Header(r.spec.codec)
	for _, e := range r.items {
		lines = append(lines, r.spec.codec.Encode(e))
	}

	start := time.Now()
	err := r.files.WriteLines(r.path, lines)
	metrics.RecordSave(entity, time.Since(start))
	metrics.RecordRecordCount(entity, len(r.items))
	if err != nil {
		r.log.Warnf("Failed to save %s file %s: %+v", entity, r.path, err)
		return fmt.Errorf("%w: %s: %w", domainRepo.ErrPersist, entity, err)
	}
	return nil
}

func (r *fileRepository[T]) addLocked(e T) error {
	id := r.spec.key(&e)
	if id == "" {
		return fmt.Errorf("%w: %s id is required", domainRepo.ErrInvalid, r.EntityName())
	}
	if r.indexLocked(id) >= 0 {
		return fmt.Errorf("%w: %s %s already exists", domainRepo.ErrDuplicate, r.EntityName(), id)
	}
	if err := r.checkLocked(&e); err != nil {
		return err
	}
	r.items = append(r.items, r.spec.clone(e))
	return r.saveLocked()
}

func (r *fileRepository[T]) replaceLocked(i int, e T) error {
	if err := r.checkLocked(&e); err != nil {
		return err
	}
	r.items[i] = r.spec.clone(e)
	return r.saveLocked()
}

// checkLocked validates field content and the kind's uniqueness rule against every other record.
func (r *fileRepository[T]) checkLocked(e *T) error {
	if r.validate != nil {
		if err := r.validate.Validate(e); err != nil {
			return fmt.Errorf("%w: %s: %v", domainRepo.ErrInvalid, r.EntityName(), err)
		}
	}
	if r.spec.conflict == nil {
		return nil
	}
	id := r.spec.key(e)
	for i := range r.items {
		if r.spec.key(&r.items[i]) == id {
			continue
		}
		if err := r.spec.conflict(e, &r.items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fileRepository[T]) indexLocked(id string) int {
	for i := range r.items {
		if r.spec.key(&r.items[i]) == id {
			return i
		}
	}
	return -1
}

func (r *fileRepository[T]) nextIDLocked() string {
	ids := make([]string, len(r.items))
	for i := range r.items {
		ids[i] = r.spec.key(&r.items[i])
	}
	return NextID(r.spec.prefix, ids)
}

// codecWarn logs lenient enum fallbacks made while decoding.
func codecWarn(log *logrus.Logger) codec.WarnFunc {
	return func(entity, field, value string) {
		log.Warnf("%s: unrecognised %s %q, defaulting to unknown", entity, field, value)
	}
}
