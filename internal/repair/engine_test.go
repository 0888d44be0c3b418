package repair

import (
	"fmt"
	"testing"

	"github.com/livrex-com/livrexgo/internal/database"
	"github.com/livrex-com/livrexgo/internal/store"
)

type fakeStore struct {
	broken         map[store.Table]bool
	fixOnReconnect map[store.Table]bool
	closes         int
	opens          int
}

func (s *fakeStore) Probe(table store.Table) error {
	if s.broken[table] {
		return fmt.Errorf("table %s is inaccessible", table)
	}
	return nil
}

func (s *fakeStore) CloseConnection() error {
	s.closes++
	return nil
}

func (s *fakeStore) OpenConnection() error {
	s.opens++
	for table, fix := range s.fixOnReconnect {
		if fix {
			delete(s.broken, table)
		}
	}
	return nil
}

// fakeAdmin recreates tables by clearing the broken flag for the
// model's table, unless stayBroken is set.
type fakeAdmin struct {
	store      *fakeStore
	stayBroken bool
	drops      []string
	creates    []string
}

func tableNameOf(model interface{}) string {
	if named, ok := model.(interface{ TableName() string }); ok {
		return named.TableName()
	}
	return fmt.Sprintf("%T", model)
}

func (a *fakeAdmin) DropTable(model interface{}) error {
	a.drops = append(a.drops, tableNameOf(model))
	return nil
}

func (a *fakeAdmin) CreateTable(model interface{}) error {
	name := tableNameOf(model)
	a.creates = append(a.creates, name)
	if !a.stayBroken {
		delete(a.store.broken, store.Table(name))
	}
	return nil
}

type fakeSnapshotter struct {
	values    map[string]string
	snapshots int
	restored  []map[string]string
}

func (s *fakeSnapshotter) Snapshot(keys []string) map[string]string {
	s.snapshots++
	snap := map[string]string{}
	for _, key := range keys {
		if v, ok := s.values[key]; ok {
			snap[key] = v
		}
	}
	return snap
}

func (s *fakeSnapshotter) Restore(snap map[string]string) {
	s.restored = append(s.restored, snap)
}

func newTestEngine(fs *fakeStore, admin *fakeAdmin, kv *fakeSnapshotter) *Engine {
	return NewEngine(fs, func() database.SchemaAdmin { return admin }, kv)
}

func TestCheckAndRepairAllHealthy(t *testing.T) {
	fs := &fakeStore{broken: map[store.Table]bool{}}
	admin := &fakeAdmin{store: fs}
	kv := &fakeSnapshotter{values: map[string]string{"session": "tok", "theme": "dark"}}

	result := newTestEngine(fs, admin, kv).CheckAndRepair()

	if !result.Success {
		t.Fatal("healthy store should report success")
	}
	for _, report := range result.Tables {
		if report.Status != StatusOK {
			t.Errorf("table %s: expected ok, got %s", report.Name, report.Status)
		}
	}
	if len(admin.drops) != 0 || len(admin.creates) != 0 {
		t.Error("no destructive steps expected on a healthy store")
	}
	if fs.closes != 0 {
		t.Error("no reconnect expected on a healthy store")
	}
}

func TestCheckAndRepairRecoversViaReconnect(t *testing.T) {
	fs := &fakeStore{
		broken:         map[store.Table]bool{store.TableCommandes: true},
		fixOnReconnect: map[store.Table]bool{store.TableCommandes: true},
	}
	admin := &fakeAdmin{store: fs}
	kv := &fakeSnapshotter{values: map[string]string{"session": "tok"}}

	result := newTestEngine(fs, admin, kv).CheckAndRepair()

	if !result.Success {
		t.Fatal("expected success")
	}
	if len(admin.drops) != 0 {
		t.Error("reconnect recovery must not drop tables")
	}

	found := false
	for _, report := range result.Tables {
		if report.Name == "commandes" {
			found = true
			if report.Status != StatusRepaired {
				t.Errorf("expected repaired, got %s", report.Status)
			}
		}
	}
	if !found {
		t.Fatal("commandes missing from the report")
	}
}

func TestCheckAndRepairRecreatesTable(t *testing.T) {
	fs := &fakeStore{broken: map[store.Table]bool{store.TableCommandes: true}}
	admin := &fakeAdmin{store: fs}
	kv := &fakeSnapshotter{values: map[string]string{"session": "tok"}}

	engine := newTestEngine(fs, admin, kv)
	result := engine.CheckAndRepair()

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(admin.drops) != 1 || admin.drops[0] != "commandes" {
		t.Errorf("expected commandes dropped, got %v", admin.drops)
	}
	if len(admin.creates) != 1 || admin.creates[0] != "commandes" {
		t.Errorf("expected commandes recreated, got %v", admin.creates)
	}

	// Session survives the destructive step
	if len(kv.restored) != 1 || kv.restored[0]["session"] != "tok" {
		t.Errorf("session snapshot should be restored, got %+v", kv.restored)
	}

	// A second pass finds everything healthy
	second := engine.CheckAndRepair()
	if !second.Success {
		t.Error("repair should be idempotent")
	}
	if len(admin.drops) != 1 {
		t.Error("second pass must not drop anything")
	}
}

func TestCheckAndRepairReportsUnrepairable(t *testing.T) {
	fs := &fakeStore{broken: map[store.Table]bool{store.TableUsers: true}}
	admin := &fakeAdmin{store: fs, stayBroken: true}
	kv := &fakeSnapshotter{values: map[string]string{}}

	engine := newTestEngine(fs, admin, kv)

	var notices []string
	engine.SetNotifyFunc(func(message string) { notices = append(notices, message) })

	result := engine.CheckAndRepair()

	if result.Success {
		t.Fatal("an unrepairable table must fail the pass")
	}
	for _, report := range result.Tables {
		if report.Name == "users" && report.Status != StatusFailed {
			t.Errorf("expected users failed, got %s", report.Status)
		}
	}
	if len(notices) != 1 {
		t.Errorf("user should be told manual reset is needed, got %v", notices)
	}
}
