package cli

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorecraft/sctl/pkg/data"
	"github.com/scorecraft/sctl/pkg/scorecard"
)

func setupServerTest(t *testing.T) (*sql.DB, *data.Scorecard) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, data.Init(dbPath))
	db, err := data.GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &data.Scorecard{
		Name:   "credit-risk",
		Method: "none",
		Table: &scorecard.Table{
			Metric: scorecard.MetricWoE,
			Entries: []scorecard.BinEntry{
				{Variable: "age", BinID: 0, Bin: "(-inf, 25)", Metric: 1.2, Coefficient: 1, Points: 10},
				{Variable: "age", BinID: 1, Bin: "[25, inf)", Metric: 3.7, Coefficient: 1, Points: 20},
				{Variable: "income", BinID: 0, Bin: "(-inf, 40k)", Metric: -0.5, Coefficient: 1, Points: 5},
			},
		},
	}
	require.NoError(t, data.SaveScorecard(db, s))
	return db, s
}

func TestServerListScorecards(t *testing.T) {
	db, _ := setupServerTest(t)
	mux := makeRouter(db)

	r := httptest.NewRequest(http.MethodGet, "/scorecards", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var list []*data.ScorecardListItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "credit-risk", list[0].Name)
	assert.Equal(t, 2, list[0].Variables)
	assert.Equal(t, 3, list[0].Bins)
}

func TestServerGetScorecard(t *testing.T) {
	db, s := setupServerTest(t)
	mux := makeRouter(db)

	r := httptest.NewRequest(http.MethodGet, "/scorecards/"+s.ID, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var got data.Scorecard
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, s.ID, got.ID)
	require.NotNil(t, got.Table)
	assert.Len(t, got.Table.Entries, 3)
}

func TestServerGetScorecard_NotFound(t *testing.T) {
	db, _ := setupServerTest(t)
	mux := makeRouter(db)

	r := httptest.NewRequest(http.MethodGet, "/scorecards/no-such-id", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerScore(t *testing.T) {
	db, s := setupServerTest(t)
	mux := makeRouter(db)

	body := `{"bins": {"age": 1, "income": 0}}`
	r := httptest.NewRequest(http.MethodPost, "/scorecards/"+s.ID+"/score", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var res scoreResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.InDelta(t, 25.0, res.Score, 1e-9)
}

func TestServerScore_BadRequest(t *testing.T) {
	db, s := setupServerTest(t)
	mux := makeRouter(db)

	for _, body := range []string{"", "{}", `{"bins": {"age": 9}}`} {
		r := httptest.NewRequest(http.MethodPost, "/scorecards/"+s.ID+"/score", strings.NewReader(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}
