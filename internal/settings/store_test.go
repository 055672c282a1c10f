package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	keyring.MockInit()
	s, err := NewStore(t.TempDir(), NewPasswordStore(), nil)
	require.NoError(t, err)
	return s
}

func pgConfig(name string) models.ConnectionConfig {
	cfg := models.NewConnectionConfig(name, models.DriverPostgres)
	cfg.Password = "secret"
	return cfg
}

func TestStore_AddAndGet(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")

	require.NoError(t, s.Add(cfg))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "local", all[0].Name)
	assert.Empty(t, all[0].Password, "passwords are not kept in the list")

	got, err := s.Get(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Password)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "name: local")
}

func TestStore_AddRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("")

	err := s.Add(cfg)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
	assert.Empty(t, s.All())
}

func TestStore_AddDuplicateName(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add(pgConfig("local")))

	err := s.Add(pgConfig("local"))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, s.All(), 1)
}

func TestStore_AddReplacesSameID(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))

	cfg.Host = "db.internal"
	require.NoError(t, s.Add(cfg))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "db.internal", all[0].Host)
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	a := pgConfig("a")
	b := pgConfig("b")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))

	a.Port = 6543
	require.NoError(t, s.Update(a))
	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 6543, got.Port)
	assert.Equal(t, []string{"a", "b"}, names(s.All()), "update keeps position")

	a.Name = "b"
	assert.ErrorIs(t, s.Update(a), ErrDuplicateName)

	unknown := pgConfig("c")
	assert.ErrorIs(t, s.Update(unknown), ErrNotFound)
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))

	removed, err := s.Remove(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "local", removed.Name)
	assert.Empty(t, s.All())

	_, err = s.passwords.Get(cfg.ID)
	assert.ErrorIs(t, err, ErrPasswordNotFound)

	_, err = s.Remove(cfg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Duplicate(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))

	first, err := s.Duplicate(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "local (Copy)", first.Name)
	assert.NotEqual(t, cfg.ID, first.ID)
	assert.Equal(t, "secret", first.Password)

	second, err := s.Duplicate(cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "local (Copy) (1)", second.Name)

	assert.Equal(t, []string{"local", "local (Copy)", "local (Copy) (1)"}, names(s.All()))

	_, err = s.Duplicate("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByName("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindByName(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))

	got, err := s.FindByName("local")
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
	assert.Equal(t, "secret", got.Password)
}

func TestStore_NameExists(t *testing.T) {
	s := newTestStore(t)
	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))

	assert.True(t, s.NameExists("local", ""))
	assert.False(t, s.NameExists("local", cfg.ID))
	assert.False(t, s.NameExists("other", ""))
}

func TestStore_ReloadFromDisk(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	s, err := NewStore(dir, nil, nil)
	require.NoError(t, err)
	sqlite := models.NewConnectionConfig("file", models.DriverSQLite)
	sqlite.Database = "/tmp/app.db"
	require.NoError(t, s.Add(sqlite))

	reopened, err := NewStore(dir, nil, nil)
	require.NoError(t, err)
	all := reopened.All()
	require.Len(t, all, 1)
	assert.Equal(t, sqlite.ID, all[0].ID)
	assert.Equal(t, models.DriverSQLite, all[0].Driver)
}

func TestNewStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("connections: [oops"), 0600))

	_, err := NewStore(dir, nil, nil)
	assert.Error(t, err)
}

func TestPasswordStore(t *testing.T) {
	keyring.MockInit()
	ps := NewPasswordStore()

	require.NoError(t, ps.Save("id-1", "pw"))
	got, err := ps.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	require.NoError(t, ps.Save("id-1", ""))
	_, err = ps.Get("id-1")
	assert.ErrorIs(t, err, ErrPasswordNotFound)

	assert.NoError(t, ps.Delete("never-stored"))
}

func names(cfgs []models.ConnectionConfig) []string {
	out := make([]string, len(cfgs))
	for i, c := range cfgs {
		out[i] = c.Name
	}
	return out
}

func TestStore_LastUsed(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s.LastUsed())

	cfg := pgConfig("local")
	require.NoError(t, s.Add(cfg))
	require.NoError(t, s.MarkUsed(cfg.ID))
	assert.Equal(t, cfg.ID, s.LastUsed())
	assert.ErrorIs(t, s.MarkUsed("missing"), ErrNotFound)

	reopened, err := NewStore(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, reopened.LastUsed())

	_, err = reopened.Remove(cfg.ID)
	require.NoError(t, err)
	assert.Empty(t, reopened.LastUsed(), "removed connections are not reported")
}
