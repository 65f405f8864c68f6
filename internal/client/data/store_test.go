package data

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/core/internal/client/localstore"
	"github.com/dayflow/core/internal/client/session"
	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
)

type testEnv struct {
	backend *fakeBackend
	local   *localstore.Store
	sess    *session.Session
	store   *Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	local, err := localstore.Open(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	sess, err := session.Load(local)
	require.NoError(t, err)

	backend := newFakeBackend()
	store := NewStore(local, backend, sess, logger.NewNop())
	require.NoError(t, store.Initialize(context.Background()))

	return &testEnv{backend: backend, local: local, sess: sess, store: store}
}

// reload builds a fresh store over the same local database, as a process
// restart would.
func (env *testEnv) reload(t *testing.T) *Store {
	t.Helper()
	sess, err := session.Load(env.local)
	require.NoError(t, err)
	store := NewStore(env.local, env.backend, sess, logger.NewNop())
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func (env *testEnv) signIn(t *testing.T) {
	t.Helper()
	err := env.sess.Login("test-token", &entities.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
}

func (env *testEnv) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.store.Flush(ctx))
}

func TestAddTask_VisibleImmediatelyOffline(t *testing.T) {
	env := newTestEnv(t)

	task, err := env.store.AddTask(TaskInput{Title: "Water the plants"})
	require.NoError(t, err)
	assert.Equal(t, SyncLocal, task.Sync)
	assert.NotEmpty(t, task.ID)

	tasks := env.store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Water the plants", tasks[0].Title)
	assert.Equal(t, entities.CategoryToday, tasks[0].Category)
}

func TestAddTask_NewestFirst(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.AddTask(TaskInput{Title: "First"})
	require.NoError(t, err)
	_, err = env.store.AddTask(TaskInput{Title: "Second"})
	require.NoError(t, err)

	tasks := env.store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Second", tasks[0].Title)
	assert.Equal(t, "First", tasks[1].Title)
}

func TestAddTask_DuplicateSameDayRejected(t *testing.T) {
	env := newTestEnv(t)
	day := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	_, err := env.store.AddTask(TaskInput{Title: "Ship release", Date: day})
	require.NoError(t, err)

	_, err = env.store.AddTask(TaskInput{Title: "  SHIP RELEASE ", Date: day.Add(3 * time.Hour)})
	assert.ErrorIs(t, err, ErrDuplicateTask)

	// The same title on another day is a different task.
	_, err = env.store.AddTask(TaskInput{Title: "Ship release", Date: day.AddDate(0, 0, 1)})
	assert.NoError(t, err)
}

func TestAddTask_EmptyTitleRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.AddTask(TaskInput{Title: "   "})
	assert.ErrorIs(t, err, entities.ErrEmptyTitle)
}

func TestMirror_SurvivesRestart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.AddTask(TaskInput{Title: "Persist me"})
	require.NoError(t, err)
	_, err = env.store.SaveNote("2025-03-14", "Mirror test")
	require.NoError(t, err)

	restarted := env.reload(t)

	tasks := restarted.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persist me", tasks[0].Title)
	assert.Equal(t, SyncLocal, tasks[0].Sync)

	note, ok := restarted.NoteFor("2025-03-14")
	require.True(t, ok)
	assert.Equal(t, "Mirror test", note.Content)
}

func TestAddTask_PropagatesWhenSignedIn(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	task, err := env.store.AddTask(TaskInput{Title: "Sync me"})
	require.NoError(t, err)
	assert.Equal(t, SyncPending, task.Sync)

	env.flush(t)

	// The locally assigned id keeps resolving after the backend hands
	// out the canonical one.
	synced, ok := env.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, SyncSynced, synced.Sync)
	assert.NotEqual(t, task.ID, synced.ID)

	assert.Equal(t, []string{"Sync me"}, env.backend.taskTitles())
}

func TestToggleTask_DoubleToggleRestoresState(t *testing.T) {
	env := newTestEnv(t)

	task, err := env.store.AddTask(TaskInput{Title: "Flip me"})
	require.NoError(t, err)

	toggled, err := env.store.ToggleTask(task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = env.store.ToggleTask(task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	// The mirror carries the same state as memory.
	restarted := env.reload(t)
	inMemory, err := json.Marshal(env.store.Tasks())
	require.NoError(t, err)
	mirrored, err := json.Marshal(restarted.Tasks())
	require.NoError(t, err)
	assert.JSONEq(t, string(inMemory), string(mirrored))
}

func TestToggleTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.ToggleTask("no-such-id")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestEditTask_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)

	task, err := env.store.AddTask(TaskInput{Title: "Old title"})
	require.NoError(t, err)

	newTitle := "New title"
	upcoming := entities.CategoryUpcoming
	edited, err := env.store.EditTask(task.ID, TaskPatch{Title: &newTitle, Category: &upcoming})
	require.NoError(t, err)

	assert.Equal(t, "New title", edited.Title)
	assert.Equal(t, entities.CategoryUpcoming, edited.Category)
	assert.Equal(t, task.Date.Unix(), edited.Date.Unix(), "unset fields stay unchanged")
}

func TestDeleteTask_PropagatesAndToleratesMissing(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	task, err := env.store.AddTask(TaskInput{Title: "Doomed"})
	require.NoError(t, err)
	env.flush(t)

	require.NoError(t, env.store.DeleteTask(task.ID))
	env.flush(t)

	assert.Empty(t, env.store.Tasks())
	assert.Empty(t, env.backend.taskTitles())

	// A record another device already removed deletes cleanly too; the
	// backend's 404 counts as success.
	another, err := env.store.AddTask(TaskInput{Title: "Another"})
	require.NoError(t, err)
	env.flush(t)

	env.backend.mu.Lock()
	env.backend.tasks = map[string]*entities.Task{}
	env.backend.order = nil
	env.backend.mu.Unlock()

	require.NoError(t, env.store.DeleteTask(another.ID))
	env.flush(t)
	assert.Empty(t, env.store.Tasks())
}

func TestDeleteTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.store.DeleteTask("missing"), ErrTaskNotFound)
}

func TestSignIn_MigratesLocalRecords(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := env.store.AddTask(TaskInput{Title: title})
		require.NoError(t, err)
	}
	_, err := env.store.SaveNote("2025-03-14", "Offline note")
	require.NoError(t, err)

	env.signIn(t)
	env.flush(t)

	// Creation order is preserved on the backend.
	assert.Equal(t, []string{"One", "Two", "Three"}, env.backend.taskTitles())

	for _, task := range env.store.Tasks() {
		assert.Equal(t, SyncSynced, task.Sync, "task %q", task.Title)
	}

	note, ok := env.store.NoteFor("2025-03-14")
	require.True(t, ok)
	assert.Equal(t, SyncSynced, note.Sync)
}

func TestSignIn_BackendWins(t *testing.T) {
	env := newTestEnv(t)

	env.backend.seedTask("Remote A")
	env.backend.seedTask("Remote B")

	_, err := env.store.AddTask(TaskInput{Title: "Local only"})
	require.NoError(t, err)

	env.signIn(t)
	env.flush(t)

	tasks := env.store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Remote B", tasks[0].Title)
	assert.Equal(t, "Remote A", tasks[1].Title)
	for _, task := range tasks {
		assert.Equal(t, SyncSynced, task.Sync)
	}
}

func TestSignIn_OfflineKeepsLocalData(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.AddTask(TaskInput{Title: "Keep me"})
	require.NoError(t, err)

	env.backend.setOffline(true)
	env.signIn(t)
	env.flush(t)

	tasks := env.store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Keep me", tasks[0].Title)
}

func TestLogout_ClearsEverything(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	_, err := env.store.AddTask(TaskInput{Title: "Gone after logout"})
	require.NoError(t, err)
	_, err = env.store.SaveNote("2025-03-14", "Also gone")
	require.NoError(t, err)
	env.flush(t)

	require.NoError(t, env.sess.Logout())

	assert.Empty(t, env.store.Tasks())
	assert.Empty(t, env.store.Notes())

	_, ok, err := env.local.Get(localstore.KeyTasks)
	require.NoError(t, err)
	assert.False(t, ok, "task mirror must be wiped")
	_, ok, err = env.local.Get(localstore.KeyNotes)
	require.NoError(t, err)
	assert.False(t, ok, "note mirror must be wiped")
}

func TestSaveNote_UpsertsByDate(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	_, err := env.store.SaveNote("2025-03-14", "First draft")
	require.NoError(t, err)
	_, err = env.store.SaveNote("2025-03-14", "Final version")
	require.NoError(t, err)
	env.flush(t)

	require.Len(t, env.store.Notes(), 1)
	note, ok := env.store.NoteFor("2025-03-14")
	require.True(t, ok)
	assert.Equal(t, "Final version", note.Content)

	env.backend.mu.Lock()
	remote := env.backend.notes["2025-03-14"]
	env.backend.mu.Unlock()
	require.NotNil(t, remote)
	assert.Equal(t, "Final version", remote.Content)
}

func TestSaveNote_InvalidDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.SaveNote("March 14th", "whatever")
	assert.ErrorIs(t, err, entities.ErrInvalidNoteDate)
}

func TestMutations_CoalesceWhileRequestInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	task, err := env.store.AddTask(TaskInput{Title: "Busy record"})
	require.NoError(t, err)
	env.flush(t)

	gate := make(chan struct{})
	env.backend.mu.Lock()
	env.backend.updateGate = gate
	env.backend.mu.Unlock()

	// First mutation starts a request that blocks on the gate.
	_, err = env.store.ToggleTask(task.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, updates, _, _ := env.backend.calls()
		return updates == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Two more mutations land while it is in flight; they must merge
	// into a single follow-up request.
	newTitle := "Renamed while busy"
	_, err = env.store.EditTask(task.ID, TaskPatch{Title: &newTitle})
	require.NoError(t, err)
	upcoming := entities.CategoryUpcoming
	_, err = env.store.EditTask(task.ID, TaskPatch{Category: &upcoming})
	require.NoError(t, err)

	close(gate)
	env.flush(t)

	_, updates, _, _ := env.backend.calls()
	assert.Equal(t, 2, updates, "burst of mutations collapses into one follow-up request")

	assert.Equal(t, []string{"Renamed while busy"}, env.backend.taskTitles())
	env.backend.mu.Lock()
	var remote *entities.Task
	for _, rt := range env.backend.tasks {
		remote = rt
	}
	env.backend.mu.Unlock()
	require.NotNil(t, remote)
	assert.True(t, remote.Completed)
	assert.Equal(t, entities.CategoryUpcoming, remote.Category)

	synced, ok := env.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, SyncSynced, synced.Sync)
}

func TestDeleteTask_WhileCreateInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	gate := make(chan struct{})
	env.backend.mu.Lock()
	env.backend.createGate = gate
	env.backend.mu.Unlock()

	task, err := env.store.AddTask(TaskInput{Title: "Fleeting"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		creates, _, _, _ := env.backend.calls()
		return creates == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The delete lands before the create response and queues behind it;
	// it must target the id the server hands back, not the temporary one.
	require.NoError(t, env.store.DeleteTask(task.ID))

	close(gate)
	env.flush(t)

	assert.Empty(t, env.backend.taskTitles(), "server copy removed once the create settles")
	assert.Empty(t, env.store.Tasks())

	restarted := env.reload(t)
	assert.Empty(t, restarted.Tasks(), "a later reconcile does not resurrect the task")
}

func TestMutationOffline_MarksFailed(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	task, err := env.store.AddTask(TaskInput{Title: "Will fail"})
	require.NoError(t, err)
	env.flush(t)

	env.backend.setOffline(true)
	_, err = env.store.ToggleTask(task.ID)
	require.NoError(t, err, "the local mutation itself never fails")
	env.flush(t)

	got, ok := env.store.Task(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed, "optimistic state survives the failed propagation")
	assert.Equal(t, SyncFailed, got.Sync)
}
