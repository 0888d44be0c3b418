package data

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/livrex-com/livrexgo/internal/api"
	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
	syncpkg "github.com/livrex-com/livrexgo/internal/sync"
)

type fakeRemote struct {
	listRows  []map[string]interface{}
	getRow    map[string]interface{}
	getErr    error
	createRow map[string]interface{}
	createErr error
	updateRow map[string]interface{}

	creates []map[string]interface{}
	updates []map[string]interface{}
	deletes []string
}

func (r *fakeRemote) List(entityType string, query url.Values) ([]map[string]interface{}, error) {
	return r.listRows, nil
}

func (r *fakeRemote) Get(entityType, id string) (map[string]interface{}, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.getRow, nil
}

func (r *fakeRemote) Create(entityType string, payload interface{}) (map[string]interface{}, error) {
	r.creates = append(r.creates, payload.(map[string]interface{}))
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.createRow, nil
}

func (r *fakeRemote) Update(entityType, id string, payload interface{}) (map[string]interface{}, error) {
	r.updates = append(r.updates, payload.(map[string]interface{}))
	return r.updateRow, nil
}

func (r *fakeRemote) Delete(entityType, id string) error {
	r.deletes = append(r.deletes, id)
	return nil
}

type fakeGate struct {
	online bool
}

func (g *fakeGate) ShouldMakeAPICall() bool { return g.online }

type fakeMirror struct {
	put      []map[string]interface{}
	mirrored int
}

func (m *fakeMirror) ListPending() []models.PendingChange        { return nil }
func (m *fakeMirror) SavePending(pc *models.PendingChange) bool  { return true }
func (m *fakeMirror) DeletePending(id string)                    {}
func (m *fakeMirror) GetCommande(id string) *models.Commande     { return nil }
func (m *fakeMirror) DeleteEntity(e syncpkg.EntityType, id string) {}

func (m *fakeMirror) PutEntity(e syncpkg.EntityType, row map[string]interface{}) bool {
	m.put = append(m.put, row)
	return true
}

func (m *fakeMirror) ReplaceEntity(e syncpkg.EntityType, tempID string, row map[string]interface{}) error {
	return nil
}

func (m *fakeMirror) MirrorAll(e syncpkg.EntityType, rows []map[string]interface{}) int {
	m.mirrored += len(rows)
	return len(rows)
}

// fakeQueue mimics the all-or-nothing contract of the store-backed
// transaction: a failure records neither side.
type fakeQueue struct {
	failWith error
	hasRow   bool

	models  []interface{}
	pending []*models.PendingChange
	updates []map[string]interface{}
	deletes []string
}

func (q *fakeQueue) Create(model interface{}, pc *models.PendingChange) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.models = append(q.models, model)
	q.pending = append(q.pending, pc)
	return nil
}

func (q *fakeQueue) Update(table store.Table, id string, partial map[string]interface{}, pc *models.PendingChange) error {
	if q.failWith != nil {
		return q.failWith
	}
	if !q.hasRow {
		return fmt.Errorf("%s %s has no local copy to update offline", pc.EntityType, id)
	}
	q.updates = append(q.updates, partial)
	q.pending = append(q.pending, pc)
	return nil
}

func (q *fakeQueue) Delete(model interface{}, id string, pc *models.PendingChange) error {
	if q.failWith != nil {
		return q.failWith
	}
	q.deletes = append(q.deletes, id)
	q.pending = append(q.pending, pc)
	return nil
}

// closedStore returns a store that was never opened; its operations
// fail into fallbacks, which is exactly what these tests want since
// the online paths must not depend on local storage.
func closedStore() *store.Store {
	runner := store.NewSafeRunner(nil, 0, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})
	return store.New(config.DatabaseConfig{}, runner)
}

func TestListOnlineMirrorsRows(t *testing.T) {
	remote := &fakeRemote{
		listRows: []map[string]interface{}{{"id": "srv-1"}, {"id": "srv-2"}},
	}
	mirror := &fakeMirror{}
	svc := New(closedStore(), remote, &fakeGate{online: true}, mirror)

	rows, err := svc.List(syncpkg.EntityTypeCommandes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
	if mirror.mirrored != 2 {
		t.Errorf("remote rows should be mirrored locally, got %d", mirror.mirrored)
	}
}

func TestCreateOnlineIsRemoteFirst(t *testing.T) {
	remote := &fakeRemote{
		createRow: map[string]interface{}{"id": "srv-1", "client_nom": "Claire Dubois"},
	}
	mirror := &fakeMirror{}
	svc := New(closedStore(), remote, &fakeGate{online: true}, mirror)

	row, err := svc.Create(syncpkg.EntityTypeCommandes, map[string]interface{}{
		"id":         "client-supplied-id",
		"client_nom": "Claire Dubois",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row["id"] != "srv-1" {
		t.Errorf("expected the server record back, got %v", row["id"])
	}

	if len(remote.creates) != 1 {
		t.Fatalf("expected one remote create, got %d", len(remote.creates))
	}
	if _, hasID := remote.creates[0]["id"]; hasID {
		t.Error("client-supplied id must be stripped; the server assigns identifiers")
	}
	if len(mirror.put) != 1 {
		t.Error("the created record should be mirrored locally")
	}
}

func TestCreateOnlineSurfacesRemoteError(t *testing.T) {
	remote := &fakeRemote{
		createErr: &api.Error{StatusCode: 422, Message: "validation"},
	}
	svc := New(closedStore(), remote, &fakeGate{online: true}, &fakeMirror{})

	_, err := svc.Create(syncpkg.EntityTypeCommandes, map[string]interface{}{"client_nom": "X"})

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 422 {
		t.Errorf("remote validation failures must surface, got %v", err)
	}
}

func TestGetOnlineNotFoundSurfaces(t *testing.T) {
	remote := &fakeRemote{getErr: &api.Error{StatusCode: 404, Message: "gone"}}
	svc := New(closedStore(), remote, &fakeGate{online: true}, &fakeMirror{})

	_, err := svc.Get(syncpkg.EntityTypeCommandes, "srv-404")
	if !api.IsNotFound(err) {
		t.Errorf("remote 404 should surface as not-found, got %v", err)
	}
}

func TestGetTempIDNeverHitsRemote(t *testing.T) {
	remote := &fakeRemote{getRow: map[string]interface{}{"id": "should-not-be-served"}}
	svc := New(closedStore(), remote, &fakeGate{online: true}, &fakeMirror{})

	row, err := svc.Get(syncpkg.EntityTypeCommandes, "temp_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != nil {
		t.Errorf("temporary id is unknown remotely and absent locally, got %v", row)
	}
}

func TestUpdateOnline(t *testing.T) {
	remote := &fakeRemote{updateRow: map[string]interface{}{"id": "srv-1", "statut": "livree"}}
	mirror := &fakeMirror{}
	svc := New(closedStore(), remote, &fakeGate{online: true}, mirror)

	row, err := svc.Update(syncpkg.EntityTypeCommandes, "srv-1", map[string]interface{}{"statut": "livree"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row["statut"] != "livree" {
		t.Errorf("expected the updated record, got %v", row)
	}
	if len(mirror.put) != 1 {
		t.Error("the updated record should be mirrored locally")
	}
}

func TestDeleteOnline(t *testing.T) {
	remote := &fakeRemote{}
	svc := New(closedStore(), remote, &fakeGate{online: true}, &fakeMirror{})

	if err := svc.Delete(syncpkg.EntityTypeCommandes, "srv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.deletes) != 1 || remote.deletes[0] != "srv-1" {
		t.Errorf("expected remote delete of srv-1, got %v", remote.deletes)
	}
}

func TestUnknownEntityTypeRejected(t *testing.T) {
	svc := New(closedStore(), &fakeRemote{}, &fakeGate{online: true}, &fakeMirror{})
	if _, err := svc.List(syncpkg.EntityType("inconnu"), nil); err == nil {
		t.Error("unknown entity types must be rejected")
	}
}

func offlineService(q *fakeQueue, remote *fakeRemote) *Service {
	svc := New(closedStore(), remote, &fakeGate{}, &fakeMirror{})
	svc.local = q
	return svc
}

func TestCreateOfflineQueuesRowAndChangeTogether(t *testing.T) {
	q := &fakeQueue{}
	remote := &fakeRemote{}
	svc := offlineService(q, remote)

	row, err := svc.Create(syncpkg.EntityTypeCommandes, map[string]interface{}{
		"client_nom":       "Claire Dubois",
		"client_telephone": "0612345678",
		"date_livraison":   "2026-08-30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, _ := row["id"].(string)
	if !models.IsTempID(id) {
		t.Errorf("offline create should mint a temporary id, got %q", id)
	}

	if len(q.models) != 1 || len(q.pending) != 1 {
		t.Fatalf("entity row and queue entry must be written together, got %d rows / %d entries", len(q.models), len(q.pending))
	}

	commande, ok := q.models[0].(*models.Commande)
	if !ok {
		t.Fatalf("expected a commande row, got %T", q.models[0])
	}
	if commande.ID != id {
		t.Errorf("stored row id %q does not match returned id %q", commande.ID, id)
	}
	if commande.Statut != models.CommandeStatutEnAttente {
		t.Errorf("offline create should default statut, got %q", commande.Statut)
	}
	if !strings.HasPrefix(commande.NumeroCommande, models.TempIDPrefix) {
		t.Errorf("offline create should mint a temporary numero, got %q", commande.NumeroCommande)
	}

	pc := q.pending[0]
	if pc.Action != models.PendingActionCreate || pc.EntityID != id {
		t.Errorf("queue entry should target the temp row: %+v", pc)
	}
	if len(remote.creates) != 0 {
		t.Error("offline create must not reach the remote API")
	}
}

func TestCreateOfflineFailedWriteLeavesNothing(t *testing.T) {
	q := &fakeQueue{failWith: errors.New("pq: could not extend file: No space left on device")}
	svc := offlineService(q, &fakeRemote{})

	_, err := svc.Create(syncpkg.EntityTypeCommandes, map[string]interface{}{"client_nom": "X"})
	if !errors.Is(err, api.ErrStorageQuota) {
		t.Errorf("disk-full write should classify as quota error, got %v", err)
	}
	if len(q.models) != 0 || len(q.pending) != 0 {
		t.Error("a failed write must leave neither the row nor the queue entry")
	}
}

func TestUpdateOfflineQueuesChange(t *testing.T) {
	q := &fakeQueue{hasRow: true}
	svc := offlineService(q, &fakeRemote{})

	if _, err := svc.Update(syncpkg.EntityTypeCommandes, "cmd-1", map[string]interface{}{"statut": "livree"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.pending) != 1 || q.pending[0].Action != models.PendingActionUpdate {
		t.Fatalf("expected one queued update, got %+v", q.pending)
	}
	if len(q.updates) != 1 {
		t.Fatal("local row should receive the partial update")
	}
	if _, ok := q.updates[0]["updated_at"]; !ok {
		t.Error("offline update should stamp updated_at")
	}
}

func TestUpdateOfflineWithoutLocalCopyRejected(t *testing.T) {
	q := &fakeQueue{}
	svc := offlineService(q, &fakeRemote{})

	if _, err := svc.Update(syncpkg.EntityTypeCommandes, "cmd-ghost", map[string]interface{}{"statut": "livree"}); err == nil {
		t.Fatal("updating an entity with no local copy must fail offline")
	}
	if len(q.pending) != 0 {
		t.Error("no queue entry may exist for a rejected update")
	}
}

func TestDeleteOfflineQueuesChange(t *testing.T) {
	q := &fakeQueue{hasRow: true}
	remote := &fakeRemote{}
	svc := offlineService(q, remote)

	if err := svc.Delete(syncpkg.EntityTypeCommandes, "cmd-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.deletes) != 1 || q.deletes[0] != "cmd-1" {
		t.Errorf("local row should be deleted, got %v", q.deletes)
	}
	if len(q.pending) != 1 || q.pending[0].Action != models.PendingActionDelete {
		t.Errorf("expected one queued delete, got %+v", q.pending)
	}
	if len(remote.deletes) != 0 {
		t.Error("offline delete must not reach the remote API")
	}
}

func TestClassifyWriteError(t *testing.T) {
	err := classifyWriteError(errors.New("pq: could not extend file: No space left on device"))
	if !errors.Is(err, api.ErrStorageQuota) {
		t.Errorf("disk-full failures should classify as quota errors, got %v", err)
	}

	plain := errors.New("constraint violation")
	if errors.Is(classifyWriteError(plain), api.ErrStorageQuota) {
		t.Error("ordinary failures must not classify as quota errors")
	}
}
