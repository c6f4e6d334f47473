package registry

import (
	"context"
	"errors"
	"testing"

	"worldvault/internal/vault/profile"
)

type fakeHandler struct {
	name  string
	fail  error
	calls *[]string
}

func (f *fakeHandler) TypeName() string { return f.name }

func (f *fakeHandler) record(op string) error {
	*f.calls = append(*f.calls, op+":"+f.name)
	return f.fail
}

func (f *fakeHandler) CreateData(ctx context.Context, profileID string) error {
	return f.record("create")
}
func (f *fakeHandler) SaveData(ctx context.Context, profileID string) error {
	return f.record("save")
}
func (f *fakeHandler) LoadData(ctx context.Context, profileID string) error {
	return f.record("load")
}
func (f *fakeHandler) DeleteData(ctx context.Context, profileID string) error {
	return f.record("delete")
}

func newRegistry(t *testing.T) (*Registry, *[]string) {
	t.Helper()
	calls := &[]string{}
	return New(profile.NewStore(t.TempDir(), nil)), calls
}

func TestDispatchOrderIsRegistrationOrder(t *testing.T) {
	r, calls := newRegistry(t)
	r.Register(&fakeHandler{name: "A", calls: calls})
	r.Register(&fakeHandler{name: "B", calls: calls})
	r.Register(&fakeHandler{name: "C", calls: calls})

	if err := r.SaveAll(context.Background(), "p1"); err != nil {
		t.Fatalf("saveAll: %v", err)
	}
	want := []string{"save:A", "save:B", "save:C"}
	if len(*calls) != len(want) {
		t.Fatalf("calls: got %v want %v", *calls, want)
	}
	for i := range want {
		if (*calls)[i] != want[i] {
			t.Fatalf("calls: got %v want %v", *calls, want)
		}
	}
}

func TestFirstFailureStopsDispatch(t *testing.T) {
	r, calls := newRegistry(t)
	boom := errors.New("disk full")
	r.Register(&fakeHandler{name: "A", calls: calls})
	r.Register(&fakeHandler{name: "B", fail: boom, calls: calls})
	r.Register(&fakeHandler{name: "C", calls: calls})

	err := r.SaveAll(context.Background(), "p1")
	if !errors.Is(err, boom) {
		t.Fatalf("saveAll: got %v want wrapped %v", err, boom)
	}
	// A ran and is not rolled back; C never ran.
	if len(*calls) != 2 || (*calls)[0] != "save:A" || (*calls)[1] != "save:B" {
		t.Fatalf("calls after failure: %v", *calls)
	}
}

func TestDeregisterRemovesHandler(t *testing.T) {
	r, calls := newRegistry(t)
	a := &fakeHandler{name: "A", calls: calls}
	b := &fakeHandler{name: "B", calls: calls}
	r.Register(a)
	r.Register(b)
	r.Deregister(a)

	if err := r.LoadAll(context.Background(), "p1"); err != nil {
		t.Fatalf("loadAll: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "load:B" {
		t.Fatalf("calls: %v", *calls)
	}
	if len(r.Handlers()) != 1 {
		t.Fatalf("handlers after deregister: %d", len(r.Handlers()))
	}
}

func TestCreateAllMakesProfileDir(t *testing.T) {
	calls := &[]string{}
	store := profile.NewStore(t.TempDir(), nil)
	r := New(store)
	r.Register(&fakeHandler{name: "A", calls: calls})

	if err := r.CreateAll(context.Background(), "p1"); err != nil {
		t.Fatalf("createAll: %v", err)
	}
	if !store.Exists("p1") {
		t.Fatalf("profile directory not created")
	}
	if r.ActiveProfile() != "p1" {
		t.Fatalf("active profile: %q", r.ActiveProfile())
	}
}

func TestDispatchHonorsCancellation(t *testing.T) {
	r, calls := newRegistry(t)
	r.Register(&fakeHandler{name: "A", calls: calls})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.DeleteAll(ctx, "p1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("deleteAll on cancelled ctx: %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("handler ran after cancellation: %v", *calls)
	}
}

func TestInvalidProfileIDRejected(t *testing.T) {
	r, _ := newRegistry(t)
	if err := r.SaveAll(context.Background(), "../other"); err == nil {
		t.Fatalf("saveAll accepted a traversal profile id")
	}
	if err := r.SelectProfile(""); err == nil {
		t.Fatalf("selectProfile accepted an empty id")
	}
}
