package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/models"
	"go-retail-pos/internal/sales"
	"go-retail-pos/internal/store"
	"go-retail-pos/internal/store/memory"
)

// gatedRepo wraps the memory store and holds ListProducts open until the
// test releases it, so concurrent requests can be lined up against one
// in-flight fetch.
type gatedRepo struct {
	store.Repository
	calls   int32
	release chan struct{}
}

func (r *gatedRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	atomic.AddInt32(&r.calls, 1)
	<-r.release
	return r.Repository.ListProducts(ctx)
}

func newProductsRouter(repo store.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(repo, sales.New(repo), cache.NewRequestCache(), cache.NoopReportCache{}, "")
	r := gin.New()
	r.GET("/products", h.GetProducts)
	return r
}

func TestConcurrentProductReadsShareOneFetch(t *testing.T) {
	mem := memory.New()
	if err := mem.CreateProduct(context.Background(), &models.Product{Name: "Cable", Price: 29.90, Stock: 10}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := &gatedRepo{Repository: mem, release: make(chan struct{})}
	router := newProductsRouter(repo)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	request := func(i int) {
		defer wg.Done()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}

	wg.Add(1)
	go request(0)
	waitFor(t, func() bool { return atomic.LoadInt32(&repo.calls) == 1 })

	wg.Add(1)
	go request(1)
	// Give the second request time to reach the in-flight wait before the
	// first fetch resolves.
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	if got := atomic.LoadInt32(&repo.calls); got != 1 {
		t.Fatalf("store hit %d times, want 1 shared fetch", got)
	}
	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("request %d returned %d", i, code)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
