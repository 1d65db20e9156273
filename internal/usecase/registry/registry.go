package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
	pkgerrors "user-registry/pkg/errors"
	"user-registry/pkg/logger"
	"user-registry/pkg/security"
)

// ErrAlreadyLoaded is returned by Load after the first call.
var ErrAlreadyLoaded = pkgerrors.NewStateError("registry already loaded")

// Registry owns the in-memory user list together with the form state
// (draft and editing target). Every mutation runs under one mutex, so the
// registry behaves as a single writer no matter how many transports drive it.
type Registry struct {
	mu      sync.Mutex
	users   []domain.User
	draft   domain.Draft
	editing *int64
	status  domain.Status
	version uint64
	loadErr string

	loadOnce sync.Once
	ready    chan struct{}

	subs    map[int]chan domain.Snapshot
	nextSub int

	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Registry)(nil)

// New creates an uninitialized registry.
func New(log *zap.Logger) *Registry {
	return &Registry{
		status:   domain.StatusUninitialized,
		ready:    make(chan struct{}),
		subs:     make(map[int]chan domain.Snapshot),
		log:      log,
		validate: validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// Start runs Load in the background. Ready is closed once it finishes.
func (r *Registry) Start(ctx context.Context, src Source) {
	go func() {
		// Load already logs fetch failures.
		_, _ = r.Load(ctx, src)
	}()
}

// Load fetches the startup list and replaces the users wholesale. A failed
// fetch is logged and leaves the users as they are; either way the registry
// becomes ready. Only the first call does anything.
func (r *Registry) Load(ctx context.Context, src Source) (domain.Snapshot, error) {
	first := false
	r.loadOnce.Do(func() { first = true })
	if !first {
		return r.Snapshot(), ErrAlreadyLoaded
	}

	log := logger.WithContext(ctx, r.log).With(zap.String("source", src.Name()))
	log.Info("loading users")

	users, err := src.Fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		log.Error("failed to load users", zap.Error(err))
		r.loadErr = err.Error()
	} else {
		r.users = slices.Clone(users)
		log.Info("users loaded", zap.Int("count", len(users)))
	}

	r.status = domain.StatusReady
	close(r.ready)

	return r.commitLocked(), err
}

// Ready returns a channel closed when the startup load has completed.
func (r *Registry) Ready() <-chan struct{} {
	return r.ready
}

// Snapshot returns a copy of the current state.
func (r *Registry) Snapshot() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot not yet
// read, starting with the current one. The returned func unsubscribes and
// closes the channel.
func (r *Registry) Subscribe() (<-chan domain.Snapshot, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++

	ch := make(chan domain.Snapshot, 1)
	ch <- r.snapshotLocked()
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
			close(ch)
		})
	}
}

// ListUsers returns the users matching the query, in display order.
func (r *Registry) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		logger.WithContext(ctx, r.log).Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("query", err.Error())
	}

	r.mu.Lock()
	matched := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if security.MatchesAny(query, u.Name, u.Email) {
			matched = append(matched, u)
		}
	}
	r.mu.Unlock()

	users, pagination := domain.Paginate(matched, in.Page, in.Limit)
	return &ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	}, nil
}

// BeginCreate clears the draft and leaves edit mode.
func (r *Registry) BeginCreate(ctx context.Context) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.WithContext(ctx, r.log).Debug("begin create")
	r.resetFormLocked()
	return r.commitLocked()
}

// BeginEdit copies the user's fields into the draft and makes it the editing target.
func (r *Registry) BeginEdit(ctx context.Context, id int64) (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.users, func(u domain.User) bool { return u.ID == id })
	if idx < 0 {
		logger.WithContext(ctx, r.log).Warn("edit target not found", zap.Int64("id", id))
		return r.snapshotLocked(), pkgerrors.NewNotFoundError("user", fmt.Sprintf("user %d not found", id))
	}

	logger.WithContext(ctx, r.log).Debug("begin edit", zap.Int64("id", id))
	r.draft = domain.DraftOf(r.users[idx])
	r.editing = &id
	return r.commitLocked(), nil
}

// SetDraft replaces the draft fields without changing the mode.
func (r *Registry) SetDraft(ctx context.Context, d domain.Draft) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draft = d
	return r.commitLocked()
}

// Submit commits the draft: a create when no user is being edited, an update
// of the editing target otherwise. The form is reset afterwards.
func (r *Registry) Submit(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.submitLocked(ctx)
}

func (r *Registry) submitLocked(ctx context.Context) (*Result, error) {
	if err := r.validate.Struct(r.draft); err != nil {
		logger.WithContext(ctx, r.log).Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if r.editing == nil {
		return r.createLocked(ctx, r.draft.Name, r.draft.Email), nil
	}
	return r.updateLocked(ctx, *r.editing, r.draft.Name, r.draft.Email), nil
}

// SubmitDraft replaces the draft with d and submits it in one step, so no
// other command can change the draft or the mode in between. On a validation
// error the draft keeps d.
func (r *Registry) SubmitDraft(ctx context.Context, d domain.Draft) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.draft != d {
		r.draft = d
		r.commitLocked()
	}
	return r.submitLocked(ctx)
}

// Create appends a new user with id = current count + 1.
func (r *Registry) Create(ctx context.Context, in CreateUserRequest) (*Result, error) {
	if err := r.validate.Struct(in); err != nil {
		logger.WithContext(ctx, r.log).Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createLocked(ctx, in.Name, in.Email), nil
}

// Update replaces name and email of the user with the given id.
func (r *Registry) Update(ctx context.Context, in UpdateUserRequest) (*Result, error) {
	if err := r.validate.Struct(in); err != nil {
		logger.WithContext(ctx, r.log).Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.ContainsFunc(r.users, func(u domain.User) bool { return u.ID == in.ID }) {
		logger.WithContext(ctx, r.log).Warn("update target not found", zap.Int64("id", in.ID))
		return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user %d not found", in.ID))
	}

	return r.updateLocked(ctx, in.ID, in.Name, in.Email), nil
}

// Delete removes every user with the given id. Unknown ids are a no-op.
func (r *Registry) Delete(ctx context.Context, id int64) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.users)
	r.users = slices.DeleteFunc(r.users, func(u domain.User) bool { return u.ID == id })
	if len(r.users) == before {
		logger.WithContext(ctx, r.log).Debug("delete of unknown id ignored", zap.Int64("id", id))
		return r.snapshotLocked()
	}

	logger.WithContext(ctx, r.log).Info("user deleted", zap.Int64("id", id), zap.Int("removed", before-len(r.users)))
	return r.commitLocked()
}

func (r *Registry) createLocked(ctx context.Context, name, email string) *Result {
	u := domain.User{
		// Ids follow the live count, so they can repeat after a delete.
		ID:    int64(len(r.users)) + 1,
		Name:  name,
		Email: email,
	}
	r.users = append(r.users, u)
	r.resetFormLocked()

	logger.WithContext(ctx, r.log).Info("user created", zap.Int64("id", u.ID), zap.String("name", u.Name), zap.String("email", u.Email))
	return &Result{User: u, Snapshot: r.commitLocked()}
}

// updateLocked rewrites every user carrying id; if none does, only the form is reset.
func (r *Registry) updateLocked(ctx context.Context, id int64, name, email string) *Result {
	updated := domain.User{ID: id, Name: name, Email: email}
	count := 0
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].Name = name
			r.users[i].Email = email
			count++
		}
	}
	r.resetFormLocked()

	logger.WithContext(ctx, r.log).Info("user updated", zap.Int64("id", id), zap.Int("matched", count))
	return &Result{User: updated, Snapshot: r.commitLocked()}
}

func (r *Registry) resetFormLocked() {
	r.draft = domain.Draft{}
	r.editing = nil
}

func (r *Registry) snapshotLocked() domain.Snapshot {
	s := domain.Snapshot{
		Version:   r.version,
		Status:    r.status,
		Users:     slices.Clone(r.users),
		Draft:     r.draft,
		Mode:      domain.ModeCreate,
		LoadError: r.loadErr,
	}
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if r.editing != nil {
		id := *r.editing
		s.EditingID = &id
		s.Mode = domain.ModeEdit
	}
	return s
}

// commitLocked bumps the version and hands the new snapshot to every
// subscriber, replacing any snapshot it has not read yet.
func (r *Registry) commitLocked() domain.Snapshot {
	r.version++
	s := r.snapshotLocked()

	for _, ch := range r.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
	return s
}
