package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evanshaw/resguard/internal/database/testutil"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testutil.MustOpenTestDB(t))
	require.NoError(t, err)
	return store
}

func TestStoreOwnerLifecycle(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	owner, err := store.GetOwner(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.Nil(t, owner)

	require.NoError(t, store.SaveOwner(ctx, "document", "doc-1", Owner{Type: OwnerTypeUser, ID: "U1"}))

	owner, err = store.GetOwner(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, OwnerTypeUser, owner.Type)
	require.Equal(t, "U1", owner.ID)

	// A second save on the same key replaces the first owner entirely.
	require.NoError(t, store.SaveOwner(ctx, "document", "doc-1", Owner{Type: OwnerTypeGroup, ID: "G1"}))

	owner, err = store.GetOwner(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, OwnerTypeGroup, owner.Type)
	require.Equal(t, "G1", owner.ID)

	require.NoError(t, store.DeleteOwner(ctx, "document", "doc-1"))

	owner, err = store.GetOwner(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.Nil(t, owner)
}

func TestStoreRecordRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	rec, err := store.GetRecord(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.Nil(t, rec)

	perms, err := ParseTriple("rwxr-x---")
	require.NoError(t, err)

	updatedBy := "U1"
	before := time.Now().Add(-time.Second)
	require.NoError(t, store.SaveRecord(ctx, Record{
		ResourceType: "document",
		ResourceID:   "doc-1",
		Perms:        perms,
		UpdatedBy:    &updatedBy,
	}))

	rec, err = store.GetRecord(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, perms, rec.Perms)
	require.NotNil(t, rec.UpdatedBy)
	require.Equal(t, "U1", *rec.UpdatedBy)
	require.True(t, rec.UpdatedAt.After(before))
}

func TestStoreRecordReplaceOnWrite(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, err := ParseTriple("rwxrwxrwx")
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(ctx, Record{ResourceType: "document", ResourceID: "doc-1", Perms: first}))

	second, err := ParseTriple("r--------")
	require.NoError(t, err)
	updatedBy := "admin-7"
	require.NoError(t, store.SaveRecord(ctx, Record{ResourceType: "document", ResourceID: "doc-1", Perms: second, UpdatedBy: &updatedBy}))

	rec, err := store.GetRecord(ctx, "document", "doc-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, second, rec.Perms)
	require.NotNil(t, rec.UpdatedBy)
	require.Equal(t, "admin-7", *rec.UpdatedBy)
}

func TestStoreRecordsAreKeyedPerResource(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	docPerms, err := ParseTriple("rwx------")
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(ctx, Record{ResourceType: "document", ResourceID: "42", Perms: docPerms}))

	folderPerms, err := ParseTriple("rwxr-xr-x")
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(ctx, Record{ResourceType: "folder", ResourceID: "42", Perms: folderPerms}))

	rec, err := store.GetRecord(ctx, "document", "42")
	require.NoError(t, err)
	require.Equal(t, docPerms, rec.Perms)

	rec, err = store.GetRecord(ctx, "folder", "42")
	require.NoError(t, err)
	require.Equal(t, folderPerms, rec.Perms)

	require.NoError(t, store.DeleteRecord(ctx, "document", "42"))

	rec, err = store.GetRecord(ctx, "document", "42")
	require.NoError(t, err)
	require.Nil(t, rec)

	rec, err = store.GetRecord(ctx, "folder", "42")
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestEngineOverSQLiteStore(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	members := newMemoryStores()
	engine, err := NewEngine(store, store, members)
	require.NoError(t, err)

	require.NoError(t, engine.SetOwner(ctx, "document", "doc-1", Owner{Type: OwnerTypeUser, ID: "U1"}))
	perms, err := ParseTriple("rwxr-x---")
	require.NoError(t, err)
	require.NoError(t, engine.SetPermissions(ctx, "document", "doc-1", perms, nil))

	decision, err := engine.Check(ctx, "document", "doc-1", "U1", Write)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, ViaOwner, decision.Via)

	decision, err = engine.Check(ctx, "document", "doc-1", "U2", Read)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "no world access")
}
