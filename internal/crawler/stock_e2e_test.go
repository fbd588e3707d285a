//go:build e2e

package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"stock-crawler/internal/browser"
	"stock-crawler/pkg/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!doctype html>
<html><head><meta charset="utf-8"></head>
<body style="height: 3000px">
  <div id="overlay" style="display: none; position: fixed; inset: 0; z-index: 10"></div>
  <div style="height: 1500px"></div>
  <button class="js-vv23-product-goto-rests" onclick="openPanel()">Наличие в магазинах</button>
  <div id="panel"></div>
<script>
  const rests = ["В наличии: 5", "Нет в наличии", "Остаток: 12", "Остаток: 0", "3 шт."];
  let next = 0;
  function addBatch() {
    const panel = document.getElementById("panel");
    for (let i = 0; i < 2 && next < rests.length; i++, next++) {
      const row = document.createElement("div");
      row.className = "VV21_MapPanelShop__Col";
      row.innerHTML = '<div class="Map__address">Магазин ' + next + '</div><div class="Map__rests">' + rests[next] + '</div>';
      panel.appendChild(row);
    }
    const rows = panel.querySelectorAll("div.VV21_MapPanelShop__Col");
    if (next < rests.length) observer.observe(rows[rows.length - 1]);
  }
  const observer = new IntersectionObserver(entries => {
    entries.forEach(e => {
      if (e.isIntersecting) { observer.unobserve(e.target); setTimeout(addBatch, 100); }
    });
  });
  function openPanel() { setTimeout(addBatch, 200); }
  if (location.search.includes("overlay")) {
    document.getElementById("overlay").style.display = "block";
  }
</script>
</body></html>`

func newE2EProcessor(t *testing.T) (*StockProcessor, context.Context) {
	t.Helper()
	session, err := browser.NewSession(context.Background(), browser.Options{Headless: true})
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return &StockProcessor{
		Page:         NewChromePage(),
		Selectors:    models.DefaultSelectors(),
		NavTimeout:   20 * time.Second,
		PanelWait:    10 * time.Second,
		PollInterval: 300 * time.Millisecond,
		StablePolls:  3,
		MaxPolls:     30,
	}, session.Context()
}

func productServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(productPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStockProcessor_E2E(t *testing.T) {
	srv := productServer(t)
	proc, ctx := newE2EProcessor(t)

	res, err := proc.Process(ctx, srv.URL+"/goods/milk.html")
	require.NoError(t, err)
	assert.Equal(t, 3, res.StoreCount)
	assert.Equal(t, 20, res.TotalQuantity)
}

func TestStockProcessor_E2E_OverlayFallsBackToScriptClick(t *testing.T) {
	srv := productServer(t)
	proc, ctx := newE2EProcessor(t)

	res, err := proc.Process(ctx, srv.URL+"/goods/milk.html?overlay=1")
	require.NoError(t, err)
	assert.Equal(t, 20, res.TotalQuantity)
}

func TestChromePage_E2E_ClickReportsInterception(t *testing.T) {
	srv := productServer(t)
	_, ctx := newE2EProcessor(t)
	page := NewChromePage()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/?overlay=1"))
	require.NoError(t, page.ScrollIntoView(ctx, "button.js-vv23-product-goto-rests"))

	err := page.Click(ctx, "button.js-vv23-product-goto-rests")
	assert.ErrorIs(t, err, ErrClickIntercepted)
}
