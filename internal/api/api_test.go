package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorkeep/colorkeep/internal/api"
	"github.com/colorkeep/colorkeep/pkg/catalog"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/prefs"
	"github.com/colorkeep/colorkeep/pkg/settings"
	"github.com/colorkeep/colorkeep/pkg/sqlite"
)

type testServer struct {
	*httptest.Server
	settings *settings.Repository
	catalog  *catalog.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	store := prefs.NewStore(filepath.Join(dir, "settings.json"))
	settingsRepo := settings.NewRepository(store)

	db, err := sqlite.Open(filepath.Join(dir, "catalog.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalogSvc := catalog.NewService(db, sqlite.NewColorStore(db))

	events := api.NewEventBroker()
	events.Start(settingsRepo, catalogSvc)
	t.Cleanup(events.Stop)

	handler := api.NewHandler(catalogSvc, settingsRepo, events)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, settings: settingsRepo, catalog: catalogSvc}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

func decodeList[T any](t *testing.T, resp *http.Response) ([]T, int) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data  []T `json:"data"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data, envelope.Count
}

func TestCreateAndListColors(t *testing.T) {
	ts := newTestServer(t)

	color := 0xffdc143c
	resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{
		Name:  "Crimson",
		Color: &color,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData[models.ColorRecord](t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Crimson", created.Name)
	assert.Equal(t, color, created.Color)

	resp = ts.do(t, http.MethodGet, "/api/v1/colors", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, count := decodeList[models.ColorRecord](t, resp)
	assert.Equal(t, 1, count)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
}

func TestCreateColorFromHex(t *testing.T) {
	ts := newTestServer(t)

	hex := "#00ff00"
	resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{
		Name: "Lime",
		Hex:  &hex,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData[models.ColorRecord](t, resp)
	assert.Equal(t, 0xff00ff00, created.Color)
	assert.InDelta(t, 120, created.Hue, 0.001)
}

func TestCreateColorRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	t.Run("neither color nor hex", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: "Empty"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed hex", func(t *testing.T) {
		hex := "#zzz"
		resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: "Bad", Hex: &hex})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestFindColorNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/colors/9999", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateFavorite(t *testing.T) {
	ts := newTestServer(t)

	color := 0xffffd700
	resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: "Gold", Color: &color})
	created := decodeData[models.ColorRecord](t, resp)

	resp = ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/colors/%d/favorite", created.ID), api.FavoriteUpdateInput{IsFavorite: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeData[models.ColorRecord](t, resp)
	assert.True(t, updated.IsFavorite)
}

func TestHueRangeQuery(t *testing.T) {
	ts := newTestServer(t)

	for name, color := range map[string]int{
		"Red":   0xffff0000,
		"Green": 0xff00ff00,
		"Blue":  0xff0000ff,
	} {
		c := color
		resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: name, Color: &c})
		resp.Body.Close()
	}

	resp := ts.do(t, http.MethodGet, "/api/v1/colors/hue-range?min=100&max=250", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, count := decodeList[models.ColorRecord](t, resp)
	assert.Equal(t, 2, count)
	require.Len(t, list, 2)
	assert.Equal(t, "Green", list[0].Name)
	assert.Equal(t, "Blue", list[1].Name)
}

func TestDeleteThenRestoreRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	color := 0xff4b0082
	resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: "Indigo", Color: &color})
	created := decodeData[models.ColorRecord](t, resp)

	resp = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/colors/%d", created.ID), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// the deleted record is waiting in the recovery list
	resp = ts.do(t, http.MethodGet, "/api/v1/deleted-colors", nil)
	deleted, count := decodeList[models.ColorRecord](t, resp)
	require.Equal(t, 1, count)
	assert.Equal(t, created, deleted[0])

	// and it is gone from the catalog
	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/colors/%d", created.ID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// restore re-inserts it with a fresh id and empties the list
	resp = ts.do(t, http.MethodPost, "/api/v1/deleted-colors/restore", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored, count := decodeList[models.ColorRecord](t, resp)
	require.Equal(t, 1, count)
	assert.Equal(t, created.Name, restored[0].Name)
	assert.Equal(t, created.Color, restored[0].Color)

	resp = ts.do(t, http.MethodGet, "/api/v1/deleted-colors", nil)
	_, count = decodeList[models.ColorRecord](t, resp)
	assert.Zero(t, count)
}

func TestRestoreEmptyListIsNoOp(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/v1/deleted-colors/restore", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, count := decodeList[models.ColorRecord](t, resp)
	assert.Zero(t, count)
	assert.Empty(t, list)
}

func TestClearDeletedColors(t *testing.T) {
	ts := newTestServer(t)

	color := 0xff808080
	resp := ts.do(t, http.MethodPost, "/api/v1/colors", api.ColorCreateInput{Name: "Gray", Color: &color})
	created := decodeData[models.ColorRecord](t, resp)

	resp = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/colors/%d", created.ID), nil)
	resp.Body.Close()

	resp = ts.do(t, http.MethodDelete, "/api/v1/deleted-colors", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/deleted-colors", nil)
	_, count := decodeList[models.ColorRecord](t, resp)
	assert.Zero(t, count)
}

func TestSetThemeReflectedInSettings(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/v1/settings/theme", api.ThemeInput{Value: "dark"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/settings", nil)
	got := decodeData[models.Settings](t, resp)
	assert.Equal(t, models.ThemeDark, got.Theme)

	resp = ts.do(t, http.MethodGet, "/api/v1/settings/theme", nil)
	theme := decodeData[api.ThemeInput](t, resp)
	assert.Equal(t, "dark", theme.Value)
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/v1/settings/theme", api.ThemeInput{Value: "solarized"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.ThemeSystem, ts.settings.GetTheme())
}

func TestSetHueRangeSwapsInvertedBounds(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/v1/settings/hue-range", api.HueRangeInput{Min: 300, Max: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	echoed := decodeData[api.HueRangeInput](t, resp)
	assert.Equal(t, api.HueRangeInput{Min: 10, Max: 300}, echoed)

	assert.Equal(t, settings.HueRange{Min: 10, Max: 300}, ts.settings.GetHueRange())
}

func TestSetNameQueryAndShowFavorites(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/v1/settings/name-query", api.NameQueryInput{Value: "azul"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/api/v1/settings/show-favorites", api.ShowFavoritesInput{Value: true})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/settings", nil)
	got := decodeData[models.Settings](t, resp)
	assert.Equal(t, "azul", got.NameQuery)
	assert.True(t, got.ShowOnlyFavorites)
}

func TestBrokerFanOut(t *testing.T) {
	b := api.NewEventBroker()

	a := b.Subscribe()
	c := b.Subscribe()
	assert.Equal(t, 2, b.ClientCount())

	b.Broadcast(api.Event{Type: "settings.update", Data: "x"})
	assert.Equal(t, "settings.update", (<-a).Type)
	assert.Equal(t, "settings.update", (<-c).Type)

	b.Unsubscribe(a)
	assert.Equal(t, 1, b.ClientCount())

	b.Unsubscribe(c)
	assert.Zero(t, b.ClientCount())
}
