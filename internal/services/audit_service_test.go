package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evanshaw/resguard/internal/database/testutil"
	"github.com/evanshaw/resguard/internal/models"
)

func TestAuditLogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)
	ctx := context.Background()

	actor := "U1"
	require.NoError(t, svc.Log(ctx, AuditEntry{
		ActorID:  &actor,
		Action:   "permissions.set",
		Resource: "document:doc-1",
		Result:   "success",
		Metadata: map[string]any{"owner_perms": "rwx"},
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Action:   "permissions.check",
		Resource: "document:doc-1",
		Result:   "denied",
	}))

	logs, err := svc.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	logs, err = svc.List(ctx, "permissions.set", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "document:doc-1", logs[0].Resource)
	require.NotNil(t, logs[0].ActorID)
	require.Equal(t, "U1", *logs[0].ActorID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	require.Equal(t, "rwx", meta["owner_perms"])
}

func TestAuditLogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "permissions.set"}))
}

func TestAuditCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuditService(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, AuditEntry{Action: "groups.create", Result: "success"}))

	stale := models.AuditLog{Action: "groups.create", Result: "success"}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("id = ?", stale.ID).
		Update("created_at", time.Now().AddDate(0, 0, -45)).Error)

	removed, err := svc.CleanupOlderThan(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	logs, err := svc.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}
