package objectives

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passiveTestRouter(t *testing.T) (*mux.Router, *Store[*PassiveObjective]) {
	t.Helper()

	passiveStore := NewPassiveStore(store.NewMemoryStore(), metrics.NewTestManager())
	handler := NewPassiveHandler(passiveStore)

	r := mux.NewRouter()
	r.HandleFunc("/objectives/passive", handler.HandleList).Methods("GET")
	r.HandleFunc("/objectives/passive", handler.HandleCreate).Methods("POST")
	r.HandleFunc("/objectives/passive/{id}", handler.HandleGet).Methods("GET")
	r.HandleFunc("/objectives/passive/{id}", handler.HandleEdit).Methods("PUT")
	r.HandleFunc("/objectives/passive/{id}", handler.HandleDelete).Methods("DELETE")
	return r, passiveStore
}

func TestHandler_CreateListDelete(t *testing.T) {
	r, passiveStore := passiveTestRouter(t)

	body := bytes.NewBufferString(`{"goal": "go outside for a walk"}`)
	req, err := http.NewRequest("POST", "/objectives/passive", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Created int64 `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Greater(t, created.Created, int64(0))

	req, err = http.NewRequest("GET", "/objectives/passive", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var listRes struct {
		Objectives []*PassiveObjective `json:"objectives"`
		Total      int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listRes))
	require.Equal(t, 1, listRes.Total)
	assert.Equal(t, "go outside for a walk", listRes.Objectives[0].Goal)

	req, err = http.NewRequest("DELETE", fmt.Sprintf("/objectives/passive/%d", created.Created), nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	list, err := passiveStore.GetAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestHandler_Create_invalid(t *testing.T) {
	r, _ := passiveTestRouter(t)

	body := bytes.NewBufferString(`{"goal": "no"}`)
	req, err := http.NewRequest("POST", "/objectives/passive", body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body = bytes.NewBufferString(`not json at all`)
	req, err = http.NewRequest("POST", "/objectives/passive", body)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_EditAndGet(t *testing.T) {
	r, passiveStore := passiveTestRouter(t)

	obj := newTestPassiveObjective()
	require.NoError(t, passiveStore.Create(context.Background(), obj))

	body := bytes.NewBufferString(`{"goal": "meditate for ten minutes"}`)
	req, err := http.NewRequest("PUT", fmt.Sprintf("/objectives/passive/%d", obj.ID()), body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req, err = http.NewRequest("GET", fmt.Sprintf("/objectives/passive/%d", obj.ID()), nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var found PassiveObjective
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &found))
	assert.Equal(t, "meditate for ten minutes", found.Goal)

	// unknown id
	req, err = http.NewRequest("GET", "/objectives/passive/1234567890", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req, err = http.NewRequest("PUT", "/objectives/passive/1234567890", bytes.NewBufferString(`{"goal": "whatever it is"}`))
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
