package objectives

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/plusone-app/plusone/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Handler serves the CRUD endpoints of one objective category.
type Handler[T Objective] struct {
	store        *Store[T]
	newObjective func() T
}

func NewActiveHandler(store *Store[*ActiveObjective]) *Handler[*ActiveObjective] {
	return &Handler[*ActiveObjective]{
		store:        store,
		newObjective: func() *ActiveObjective { return &ActiveObjective{} },
	}
}

func NewPassiveHandler(store *Store[*PassiveObjective]) *Handler[*PassiveObjective] {
	return &Handler[*PassiveObjective]{
		store:        store,
		newObjective: func() *PassiveObjective { return &PassiveObjective{} },
	}
}

func (handler *Handler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := handler.store.GetAll(r.Context())
	if err != nil {
		// degrade to an empty collection on read failure
		log.Errorf("list %s objectives error: %s", handler.store.category.Name, err)
		list = nil
	}

	if list == nil {
		list = []T{}
	}

	listJson, err := json.Marshal(list)
	if err != nil {
		log.Errorf("marshal %s objectives error: %s", handler.store.category.Name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"objectives": %s, "total": %d}`, listJson, len(list))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func (handler *Handler[T]) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}

	obj, err := handler.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrObjectiveNotFound) {
			http.Error(w, "objective not found", http.StatusNotFound)
			return
		}
		log.Errorf("get %s objective %d error: %s", handler.store.category.Name, id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	objJson, err := json.Marshal(obj)
	if err != nil {
		log.Errorf("marshal %s objective %d error: %s", handler.store.category.Name, id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, objJson)
}

func (handler *Handler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	obj := handler.newObjective()
	if err := json.NewDecoder(r.Body).Decode(obj); err != nil {
		http.Error(w, "error, invalid objective json", http.StatusBadRequest)
		return
	}

	if err := handler.store.Create(r.Context(), obj); err != nil {
		if errors.Is(err, ErrInvalidObjective) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("create %s objective error: %s", handler.store.category.Name, err)
		http.Error(w, "error, failed to create objective", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponse(w, pkg.ContentType.JSON, fmt.Sprintf(`{"created": %d}`, obj.ID()), http.StatusCreated)
}

func (handler *Handler[T]) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	id, ok := objectiveID(w, r)
	if !ok {
		return
	}

	patch, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "error, failed to read body", http.StatusBadRequest)
		return
	}

	if err := handler.store.Edit(r.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, ErrObjectiveNotFound):
			http.Error(w, "objective not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidObjective):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("edit %s objective %d error: %s", handler.store.category.Name, id, err)
			http.Error(w, "error, failed to edit objective", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updated": %d}`, id))
}

func (handler *Handler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := objectiveID(w, r)
	if !ok {
		return
	}

	if err := handler.store.Delete(r.Context(), id); err != nil {
		log.Errorf("delete %s objective %d error: %s", handler.store.category.Name, id, err)
		http.Error(w, "error, failed to delete objective", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"deleted": %d}`, id))
}

func objectiveID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
