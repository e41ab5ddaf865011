package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/nodehub/internal/domain"
	"github.com/shaiso/nodehub/internal/repo"
)

const (
	alphaID = "3b0e5d9c-8a61-4f4e-b1a3-0c7d2e9f1a01"
	betaID  = "3b0e5d9c-8a61-4f4e-b1a3-0c7d2e9f1a02"
)

// newScenarioService — два документа из описания поведения:
// Alpha с credential X и Beta с credentials x, Y.
func newScenarioService(t *testing.T) *Service {
	t.Helper()

	store, err := repo.NewMemoryRepo(
		domain.Node{ID: alphaID, DisplayName: "Alpha", Credentials: []domain.Credential{{Name: "X"}}},
		domain.Node{ID: betaID, DisplayName: "Beta", Credentials: []domain.Credential{{Name: "x"}, {Name: "Y"}}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewService(store)
}

// newCatalogService — n документов "Node 0".."Node n-1", у каждого
// credential с общим и уникальным именем.
func newCatalogService(t *testing.T, n int) *Service {
	t.Helper()

	nodes := make([]domain.Node, n)
	for i := range nodes {
		nodes[i] = domain.Node{
			DisplayName: fmt.Sprintf("Node %d", i),
			IconURL:     fmt.Sprintf("icons/%d.svg", i),
			Credentials: []domain.Credential{{Name: "sharedApi"}, {Name: fmt.Sprintf("api%d", i)}},
		}
	}
	store, err := repo.NewMemoryRepo(nodes...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewService(store)
}

func TestListNames_Scenario(t *testing.T) {
	svc := newScenarioService(t)

	page, err := svc.ListNames(context.Background(), "a", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.TotalItems != 2 {
		t.Errorf("expected totalItems=2, got %d", page.TotalItems)
	}
	if page.TotalPages != 1 {
		t.Errorf("expected totalPages=1, got %d", page.TotalPages)
	}
	if page.CurrentPage != 1 || page.PageSize != 10 {
		t.Errorf("unexpected page meta: %+v", page)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Data))
	}
	if page.Data[0].ID != alphaID || page.Data[1].ID != betaID {
		t.Errorf("expected insertion order, got %+v", page.Data)
	}
}

func TestListCredentialNames_Scenario(t *testing.T) {
	svc := newScenarioService(t)

	names, err := svc.ListCredentialNames(context.Background(), "x", 1, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// X и x — одно имя, остаётся первое написание.
	want := []string{"X", "Y"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestListNames_FilterProperty(t *testing.T) {
	svc := newCatalogService(t, 25)
	ctx := context.Background()

	for _, search := range []string{"node 1", "NODE", "2", "7", "missing"} {
		t.Run(search, func(t *testing.T) {
			page, err := svc.ListNames(ctx, search, 1, 100)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			returned := make(map[string]bool)
			for _, item := range page.Data {
				returned[item.DisplayName] = true
				if !strings.Contains(strings.ToLower(item.DisplayName), strings.ToLower(search)) {
					t.Errorf("%q does not contain %q", item.DisplayName, search)
				}
			}

			// Все исключённые действительно не совпадают.
			all, _ := svc.ListRecords(ctx, "")
			for _, n := range all {
				matches := strings.Contains(strings.ToLower(n.DisplayName), strings.ToLower(search))
				if matches != returned[n.DisplayName] {
					t.Errorf("%q: matches=%v returned=%v", n.DisplayName, matches, returned[n.DisplayName])
				}
			}

			if page.TotalItems != len(page.Data) {
				t.Errorf("totalItems %d != returned %d", page.TotalItems, len(page.Data))
			}
		})
	}
}

func TestListNames_PaginationIsStable(t *testing.T) {
	svc := newCatalogService(t, 23)
	ctx := context.Background()

	for _, pageSize := range []int{1, 5, 10, 23, 50} {
		t.Run(fmt.Sprintf("size=%d", pageSize), func(t *testing.T) {
			first, err := svc.ListNames(ctx, "", 1, pageSize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantPages := (first.TotalItems + pageSize - 1) / pageSize
			if first.TotalPages != wantPages {
				t.Errorf("expected %d pages, got %d", wantPages, first.TotalPages)
			}

			seen := make(map[string]bool)
			count := 0
			for p := 1; p <= first.TotalPages; p++ {
				page, err := svc.ListNames(ctx, "", p, pageSize)
				if err != nil {
					t.Fatalf("page %d: %v", p, err)
				}
				for _, item := range page.Data {
					if seen[item.ID] {
						t.Errorf("duplicate item %s on page %d", item.ID, p)
					}
					seen[item.ID] = true
					count++
				}
			}

			if count != first.TotalItems {
				t.Errorf("expected %d items across pages, got %d", first.TotalItems, count)
			}
		})
	}
}

func TestListNames_DefaultsAndBeyondLastPage(t *testing.T) {
	svc := newCatalogService(t, 12)
	ctx := context.Background()

	page, err := svc.ListNames(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.CurrentPage != DefaultPage || page.PageSize != DefaultNamesPageSize {
		t.Errorf("expected defaults, got page=%d size=%d", page.CurrentPage, page.PageSize)
	}
	if len(page.Data) != 10 || page.TotalPages != 2 {
		t.Errorf("unexpected page: items=%d pages=%d", len(page.Data), page.TotalPages)
	}

	page, err = svc.ListNames(ctx, "", 99, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 0 || page.Data == nil {
		t.Errorf("expected empty non-nil data, got %v", page.Data)
	}
	if page.TotalItems != 12 {
		t.Errorf("totalItems must ignore pagination, got %d", page.TotalItems)
	}
}

func TestListNames_ProjectsSummary(t *testing.T) {
	svc := newCatalogService(t, 1)

	page, err := svc.ListNames(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Data[0].IconURL != "icons/0.svg" || page.Data[0].DisplayName != "Node 0" {
		t.Errorf("unexpected summary: %+v", page.Data[0])
	}
}

func TestListCredentialNames_WindowAppliesToRecords(t *testing.T) {
	svc := newCatalogService(t, 5)
	ctx := context.Background()

	// Окно в 2 документа даёт 3 имени: общее + два уникальных.
	names, err := svc.ListCredentialNames(ctx, "api", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"sharedApi", "api2", "api3"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}

	// Поиск по уникальному имени возвращает и остальные имена документа.
	names, _ = svc.ListCredentialNames(ctx, "API4", 0, 0)
	want = []string{"sharedApi", "api4"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestListCredentialNames_NoDuplicates(t *testing.T) {
	svc := newCatalogService(t, 30)

	names, err := svc.ListCredentialNames(context.Background(), "", 1, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate name %q", n)
		}
		seen[n] = true
	}
	if len(names) != 31 {
		t.Errorf("expected 31 names, got %d", len(names))
	}
}

func TestListRecords(t *testing.T) {
	svc := newScenarioService(t)
	ctx := context.Background()

	all, err := svc.ListRecords(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}

	beta, _ := svc.ListRecords(ctx, "Beta")
	if len(beta) != 1 || len(beta[0].Credentials) != 2 {
		t.Errorf("expected full Beta record, got %+v", beta)
	}

	none, _ := svc.ListRecords(ctx, "Bet")
	if len(none) != 0 {
		t.Errorf("exact match expected, got %d records", len(none))
	}
}

func TestGetRecord(t *testing.T) {
	svc := newScenarioService(t)
	ctx := context.Background()

	rec, err := svc.GetRecord(ctx, alphaID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DisplayName != "Alpha" {
		t.Errorf("expected Alpha, got %s", rec.DisplayName)
	}

	_, err = svc.GetRecord(ctx, uuid.NewString())
	if !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = svc.GetRecord(ctx, "12345")
	if !errors.Is(err, repo.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if errors.Is(err, repo.ErrNotFound) {
		t.Error("malformed id must not be reported as not found")
	}
}

// failingStore возвращает ошибку на любой запрос.
type failingStore struct{ err error }

func (s failingStore) Find(context.Context, repo.Filter, repo.FindOptions) ([]domain.Node, error) {
	return nil, s.err
}

func (s failingStore) Count(context.Context, repo.Filter) (int, error) {
	return 0, s.err
}

func (s failingStore) GetByID(context.Context, string, ...string) (*domain.Node, error) {
	return nil, s.err
}

func TestService_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewService(failingStore{err: storeErr})
	ctx := context.Background()

	if _, err := svc.ListRecords(ctx, ""); !errors.Is(err, storeErr) {
		t.Errorf("ListRecords: expected store error, got %v", err)
	}
	if _, err := svc.ListNames(ctx, "", 1, 10); !errors.Is(err, storeErr) {
		t.Errorf("ListNames: expected store error, got %v", err)
	}
	if _, err := svc.ListCredentialNames(ctx, "", 1, 10); !errors.Is(err, storeErr) {
		t.Errorf("ListCredentialNames: expected store error, got %v", err)
	}
	if _, err := svc.GetRecord(ctx, alphaID); !errors.Is(err, storeErr) {
		t.Errorf("GetRecord: expected store error, got %v", err)
	}
}

func TestOffset(t *testing.T) {
	if got := offset(3, 10); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := offset(1, 10); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := offset(int(^uint(0)>>1), 1000); got <= 0 {
		t.Errorf("offset must not overflow, got %d", got)
	}
}
