package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plusone-app/plusone/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := handler.store.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("get profile error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(p)
	if err != nil {
		log.Errorf("marshal profile error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var p FullProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "error, invalid profile json", http.StatusBadRequest)
		return
	}

	if err := handler.store.Update(r.Context(), p); err != nil {
		if errors.Is(err, ErrInvalidProfile) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("update profile error: %s", err)
		http.Error(w, "error, failed to update profile", http.StatusInternalServerError)
		return
	}

	log.Debugf("profile updated for %s", p.Username)
	pkg.WriteJSONResponseOK(w, `{"updated": true}`)
}
