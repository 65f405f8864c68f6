package data

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/client/api"
	"github.com/dayflow/core/internal/client/localstore"
	"github.com/dayflow/core/internal/client/session"
	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
	"github.com/dayflow/core/internal/ports"
)

const reconcileTimeout = 15 * time.Second

// Store owns the client's task and note collections. All mutations apply
// locally first and return immediately; backend propagation happens in the
// background through a per-record queue. The collections are mirrored to
// the local store after every change so a crash or restart loses nothing.
type Store struct {
	mu      sync.Mutex
	local   *localstore.Store
	backend api.Client
	session *session.Session
	log     *logger.Logger
	prop    *propagator

	tasks []*Task
	notes []*Note

	// aliases maps a superseded record id to its replacement, so callers
	// holding the id a task was created under keep reaching it after the
	// backend assigns the canonical one.
	aliases map[string]string
	// keys maps a record id to its propagation queue key, which stays
	// fixed across id swaps so ops for one record never run concurrently.
	keys map[string]string
	// taskPatches accumulates partial updates per queue key until the
	// next propagation request drains them.
	taskPatches map[string]*ports.UpdateTaskRequest

	authed bool
}

// NewStore wires the data layer together. Call Initialize before use.
func NewStore(local *localstore.Store, backend api.Client, sess *session.Session, log *logger.Logger) *Store {
	return &Store{
		local:       local,
		backend:     backend,
		session:     sess,
		log:         log.WithComponent("data"),
		prop:        newPropagator(),
		aliases:     make(map[string]string),
		keys:        make(map[string]string),
		taskPatches: make(map[string]*ports.UpdateTaskRequest),
	}
}

// Initialize loads the mirrored collections, hooks the store up to session
// changes, and, when a session already exists, reconciles with the backend
// before returning. A reconcile failure is not fatal; the client keeps
// working from its mirror.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.authed = s.session.Authenticated()
	authed := s.authed
	s.mu.Unlock()

	s.session.Subscribe(s.sessionChanged)

	if authed {
		s.reconcile(ctx)
	}
	return nil
}

// Flush blocks until every queued propagation has run, or ctx expires.
// Short-lived processes call this before exiting.
func (s *Store) Flush(ctx context.Context) error {
	return s.prop.Flush(ctx)
}

func (s *Store) sessionChanged(st session.State) {
	s.mu.Lock()
	was := s.authed
	s.authed = st.Authenticated()
	s.mu.Unlock()

	switch {
	case st.Authenticated() && !was:
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		s.reconcile(ctx)
	case !st.Authenticated() && was:
		s.clear()
	}
}

// Tasks returns a snapshot of the task list, newest created first.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = *t
	}
	return out
}

// Task returns a snapshot of one task. The id may be the one the task was
// created under even if the backend has since assigned a new one.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTaskLocked(id)
	if t == nil {
		return Task{}, false
	}
	return *t, true
}

// Notes returns a snapshot of all daily notes.
func (s *Store) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = *n
	}
	return out
}

// NoteFor returns the note for a calendar date, if one exists.
func (s *Store) NoteFor(date string) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.Date == date {
			return *n, true
		}
	}
	return Note{}, false
}

// AddTask creates a task locally and schedules its propagation. A task
// whose title matches an existing task on the same calendar day
// (case-insensitive) is rejected with ErrDuplicateTask.
func (s *Store) AddTask(input TaskInput) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, entities.ErrEmptyTitle
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	s.mu.Lock()
	for _, t := range s.tasks {
		if strings.EqualFold(strings.TrimSpace(t.Title), title) && sameDay(t.Date, date) {
			s.mu.Unlock()
			return Task{}, ErrDuplicateTask
		}
	}

	now := time.Now()
	task := &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		Category:    entities.NormalizeCategory(string(input.Category)),
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
		Sync:        SyncLocal,
	}
	if s.authed {
		task.Sync = SyncPending
	}
	s.tasks = append([]*Task{task}, s.tasks...)
	s.persistTasksLocked()
	snapshot := *task
	authed := s.authed
	s.mu.Unlock()

	if authed {
		s.enqueueTaskCreate(task.ID)
	}
	return snapshot, nil
}

// ToggleTask flips a task's completed flag.
func (s *Store) ToggleTask(id string) (Task, error) {
	return s.mutateTask(id, func(t *Task) ports.UpdateTaskRequest {
		t.Completed = !t.Completed
		completed := t.Completed
		return ports.UpdateTaskRequest{Completed: &completed}
	})
}

// EditTask applies a partial update to a task's fields.
func (s *Store) EditTask(id string, patch TaskPatch) (Task, error) {
	return s.mutateTask(id, func(t *Task) ports.UpdateTaskRequest {
		var req ports.UpdateTaskRequest
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
			req.Title = &t.Title
		}
		if patch.Description != nil {
			t.Description = patch.Description
			req.Description = patch.Description
		}
		if patch.Category != nil {
			t.Category = entities.NormalizeCategory(string(*patch.Category))
			category := string(t.Category)
			req.Category = &category
		}
		if patch.Date != nil {
			t.Date = *patch.Date
			req.Date = patch.Date
		}
		return req
	})
}

// mutateTask applies mutate under the lock, mirrors the result, and
// schedules propagation of the returned partial update.
func (s *Store) mutateTask(id string, mutate func(*Task) ports.UpdateTaskRequest) (Task, error) {
	s.mu.Lock()
	t := s.findTaskLocked(id)
	if t == nil {
		s.mu.Unlock()
		return Task{}, ErrTaskNotFound
	}

	req := mutate(t)
	t.UpdatedAt = time.Now()

	if !s.authed {
		t.Sync = SyncLocal
		s.persistTasksLocked()
		snapshot := *t
		s.mu.Unlock()
		return snapshot, nil
	}

	key := s.keyForLocked(t.ID)
	needsCreate := t.Sync == SyncLocal
	t.Sync = SyncPending
	if !needsCreate {
		s.mergePatchLocked(key, req)
	}
	s.persistTasksLocked()
	snapshot := *t
	currentID := t.ID
	s.mu.Unlock()

	if needsCreate {
		s.enqueueTaskCreate(currentID)
	} else {
		s.enqueueTaskUpdate(key, currentID)
	}
	return snapshot, nil
}

// DeleteTask removes a task locally and, when a session exists, asks the
// backend to forget it too. A backend 404 is treated as success.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	t := s.findTaskLocked(id)
	if t == nil {
		s.mu.Unlock()
		return ErrTaskNotFound
	}

	currentID := t.ID
	key := s.keyForLocked(currentID)
	neverPropagated := t.Sync == SyncLocal
	for i, candidate := range s.tasks {
		if candidate == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	delete(s.taskPatches, key)
	s.persistTasksLocked()
	authed := s.authed
	s.mu.Unlock()

	if !authed || neverPropagated {
		return nil
	}

	s.prop.Enqueue(key, func(ctx context.Context) {
		s.mu.Lock()
		sid := s.resolveIDLocked(currentID)
		token := s.session.Token()
		s.mu.Unlock()

		if err := s.backend.DeleteTask(ctx, token, sid); err != nil && !api.IsNotFound(err) {
			s.log.WithError(err).Warnw("task delete not propagated", "task_id", sid)
		}
	})
	return nil
}

// SaveNote creates or overwrites the note for a calendar date.
func (s *Store) SaveNote(date, content string) (Note, error) {
	if !entities.ValidNoteDate(date) {
		return Note{}, entities.ErrInvalidNoteDate
	}

	s.mu.Lock()
	var note *Note
	for _, n := range s.notes {
		if n.Date == date {
			note = n
			break
		}
	}
	if note == nil {
		note = &Note{Date: date}
		s.notes = append(s.notes, note)
	}
	note.Content = content
	note.UpdatedAt = time.Now()
	note.Sync = SyncLocal
	if s.authed {
		note.Sync = SyncPending
	}
	s.persistNotesLocked()
	snapshot := *note
	authed := s.authed
	s.mu.Unlock()

	if authed {
		s.enqueueNoteSave(date)
	}
	return snapshot, nil
}

// --- propagation ---

func (s *Store) enqueueTaskCreate(id string) {
	key := s.keyFor(id)
	s.prop.Enqueue(key, func(ctx context.Context) {
		s.mu.Lock()
		t := s.findTaskLocked(id)
		if t == nil {
			s.mu.Unlock()
			return
		}
		taskDate := t.Date
		req := ports.CreateTaskRequest{
			Title:       t.Title,
			Description: t.Description,
			Category:    string(t.Category),
			Completed:   t.Completed,
			Date:        &taskDate,
		}
		token := s.session.Token()
		s.mu.Unlock()

		created, err := s.backend.CreateTask(ctx, token, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		t = s.findTaskLocked(id)
		if t == nil {
			// Deleted while the create was in flight. Record the server
			// identity so a queued delete resolves to it, not the temp id.
			if err == nil {
				serverID := created.ID.String()
				s.aliases[id] = serverID
				s.keys[serverID] = key
			}
			return
		}
		if err != nil {
			t.Sync = SyncFailed
			s.persistTasksLocked()
			s.log.WithError(err).Warnw("task create not propagated", "task_id", id)
			return
		}
		s.adoptServerTaskLocked(t, created, key)
		s.persistTasksLocked()
	})
}

func (s *Store) enqueueTaskUpdate(key, id string) {
	s.prop.Enqueue(key, func(ctx context.Context) {
		s.mu.Lock()
		patch := s.taskPatches[key]
		delete(s.taskPatches, key)
		if patch == nil {
			s.mu.Unlock()
			return
		}
		sid := s.resolveIDLocked(id)
		token := s.session.Token()
		s.mu.Unlock()

		updated, err := s.backend.UpdateTask(ctx, token, sid, *patch)

		s.mu.Lock()
		defer s.mu.Unlock()
		t := s.findTaskLocked(sid)
		if t == nil {
			return
		}
		if err != nil {
			t.Sync = SyncFailed
			s.persistTasksLocked()
			s.log.WithError(err).Warnw("task update not propagated", "task_id", sid)
			return
		}
		// Leave pending if more mutations queued behind this request.
		if s.taskPatches[key] == nil {
			t.UpdatedAt = updated.UpdatedAt
			t.Sync = SyncSynced
		}
		s.persistTasksLocked()
	})
}

func (s *Store) enqueueNoteSave(date string) {
	s.prop.Enqueue("note:"+date, func(ctx context.Context) {
		s.mu.Lock()
		var note *Note
		for _, n := range s.notes {
			if n.Date == date {
				note = n
				break
			}
		}
		if note == nil {
			s.mu.Unlock()
			return
		}
		req := ports.SaveNoteRequest{Date: date, Content: note.Content}
		token := s.session.Token()
		s.mu.Unlock()

		saved, err := s.backend.SaveNote(ctx, token, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		note = nil
		for _, n := range s.notes {
			if n.Date == date {
				note = n
				break
			}
		}
		if note == nil {
			return
		}
		if err != nil {
			note.Sync = SyncFailed
			s.persistNotesLocked()
			s.log.WithError(err).Warnw("note save not propagated", "date", date)
			return
		}
		// A newer local edit may have raced this request; only settle if
		// the acknowledged content is still current.
		if note.Content == req.Content {
			note.UpdatedAt = saved.UpdatedAt
			note.Sync = SyncSynced
		}
		s.persistNotesLocked()
	})
}

// --- reconciliation ---

// reconcile runs once per transition into an authenticated session. For
// each collection: a non-empty backend copy replaces the local one,
// otherwise local records migrate up to the backend. Network failures
// leave the local collections untouched.
func (s *Store) reconcile(ctx context.Context) {
	token := s.session.Token()
	if token == "" {
		return
	}

	remote, err := s.backend.ListTasks(ctx, token)
	switch {
	case err != nil:
		s.log.WithError(err).Infow("backend unreachable, keeping local tasks")
	case len(remote) > 0:
		s.mu.Lock()
		s.tasks = make([]*Task, 0, len(remote))
		for _, rt := range remote {
			s.tasks = append(s.tasks, taskFromEntity(rt))
		}
		s.taskPatches = make(map[string]*ports.UpdateTaskRequest)
		s.persistTasksLocked()
		s.mu.Unlock()
	default:
		s.migrateTasks(ctx, token)
	}

	remoteNotes, err := s.backend.ListNotes(ctx, token)
	switch {
	case err != nil:
		s.log.WithError(err).Infow("backend unreachable, keeping local notes")
	case len(remoteNotes) > 0:
		s.mu.Lock()
		s.notes = make([]*Note, 0, len(remoteNotes))
		for _, rn := range remoteNotes {
			s.notes = append(s.notes, &Note{
				Date:      rn.Date,
				Content:   rn.Content,
				UpdatedAt: rn.UpdatedAt,
				Sync:      SyncSynced,
			})
		}
		s.persistNotesLocked()
		s.mu.Unlock()
	default:
		s.migrateNotes(ctx, token)
	}
}

// migrateTasks uploads local-only tasks to an empty backend, oldest first
// so the backend's creation order matches the local one.
func (s *Store) migrateTasks(ctx context.Context, token string) {
	s.mu.Lock()
	locals := make([]*Task, len(s.tasks))
	copy(locals, s.tasks)
	s.mu.Unlock()

	for i := len(locals) - 1; i >= 0; i-- {
		local := locals[i]
		taskDate := local.Date
		req := ports.CreateTaskRequest{
			Title:       local.Title,
			Description: local.Description,
			Category:    string(local.Category),
			Completed:   local.Completed,
			Date:        &taskDate,
		}
		created, err := s.backend.CreateTask(ctx, token, req)

		s.mu.Lock()
		t := s.findTaskLocked(local.ID)
		if t == nil {
			s.mu.Unlock()
			continue
		}
		if err != nil {
			t.Sync = SyncFailed
			s.log.WithError(err).Warnw("task migration failed", "task_id", local.ID)
		} else {
			s.adoptServerTaskLocked(t, created, s.keyForLocked(t.ID))
		}
		s.persistTasksLocked()
		s.mu.Unlock()
	}
}

func (s *Store) migrateNotes(ctx context.Context, token string) {
	s.mu.Lock()
	dates := make([]string, 0, len(s.notes))
	for _, n := range s.notes {
		dates = append(dates, n.Date)
	}
	s.mu.Unlock()

	for _, date := range dates {
		s.enqueueNoteSave(date)
	}
}

// adoptServerTaskLocked replaces a local record's identity and server-owned
// fields with the backend's, keeping the queue key stable.
func (s *Store) adoptServerTaskLocked(t *Task, created *entities.Task, key string) {
	serverID := created.ID.String()
	if serverID != t.ID {
		s.aliases[t.ID] = serverID
		s.keys[serverID] = key
	}
	t.ID = serverID
	t.Category = created.Category
	t.Completed = created.Completed
	t.Date = created.Date
	t.CreatedAt = created.CreatedAt
	t.UpdatedAt = created.UpdatedAt
	t.Sync = SyncSynced
}

// clear tears down all local data after logout. Queued propagation ops
// find their records gone and become no-ops.
func (s *Store) clear() {
	s.mu.Lock()
	s.tasks = nil
	s.notes = nil
	s.aliases = make(map[string]string)
	s.keys = make(map[string]string)
	s.taskPatches = make(map[string]*ports.UpdateTaskRequest)
	s.mu.Unlock()

	if err := s.local.Delete(localstore.KeyTasks); err != nil {
		s.log.WithError(err).Warnw("clearing mirrored tasks")
	}
	if err := s.local.Delete(localstore.KeyNotes); err != nil {
		s.log.WithError(err).Warnw("clearing mirrored notes")
	}
}

// --- lookups and persistence ---

func (s *Store) findTaskLocked(id string) *Task {
	id = s.resolveIDLocked(id)
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// resolveIDLocked follows the alias chain to a record's current id.
func (s *Store) resolveIDLocked(id string) string {
	for {
		next, ok := s.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (s *Store) keyFor(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyForLocked(id)
}

func (s *Store) keyForLocked(id string) string {
	if key, ok := s.keys[id]; ok {
		return key
	}
	return id
}

func (s *Store) mergePatchLocked(key string, req ports.UpdateTaskRequest) {
	patch := s.taskPatches[key]
	if patch == nil {
		patch = &ports.UpdateTaskRequest{}
		s.taskPatches[key] = patch
	}
	if req.Title != nil {
		patch.Title = req.Title
	}
	if req.Description != nil {
		patch.Description = req.Description
	}
	if req.Category != nil {
		patch.Category = req.Category
	}
	if req.Completed != nil {
		patch.Completed = req.Completed
	}
	if req.Date != nil {
		patch.Date = req.Date
	}
}

func (s *Store) loadLocked() error {
	raw, ok, err := s.local.Get(localstore.KeyTasks)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &s.tasks); err != nil {
			s.log.WithError(err).Warnw("discarding unreadable task mirror")
			s.tasks = nil
		}
	}

	raw, ok, err = s.local.Get(localstore.KeyNotes)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &s.notes); err != nil {
			s.log.WithError(err).Warnw("discarding unreadable note mirror")
			s.notes = nil
		}
	}
	return nil
}

func (s *Store) persistTasksLocked() {
	raw, err := json.Marshal(s.tasks)
	if err != nil {
		s.log.WithError(err).Errorw("encoding task mirror")
		return
	}
	if err := s.local.Set(localstore.KeyTasks, string(raw)); err != nil {
		s.log.WithError(err).Errorw("writing task mirror")
	}
}

func (s *Store) persistNotesLocked() {
	raw, err := json.Marshal(s.notes)
	if err != nil {
		s.log.WithError(err).Errorw("encoding note mirror")
		return
	}
	if err := s.local.Set(localstore.KeyNotes, string(raw)); err != nil {
		s.log.WithError(err).Errorw("writing note mirror")
	}
}

func taskFromEntity(t *entities.Task) *Task {
	return &Task{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Completed:   t.Completed,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Sync:        SyncSynced,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
