package dailylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/plusone-app/plusone/internal/health"
	"github.com/plusone-app/plusone/internal/objectives"
	"github.com/plusone-app/plusone/internal/profile"
	"github.com/plusone-app/plusone/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Handler serves the daily log endpoints of both categories. Category
// dispatch happens here at the HTTP boundary, the engines themselves are
// category agnostic.
type Handler struct {
	active   *Engine[*objectives.ActiveObjective, ActiveEntry]
	passive  *Engine[*objectives.PassiveObjective, PassiveEntry]
	profiles *profile.Store
}

func NewHandler(
	active *Engine[*objectives.ActiveObjective, ActiveEntry],
	passive *Engine[*objectives.PassiveObjective, PassiveEntry],
	profiles *profile.Store,
) *Handler {
	return &Handler{
		active:   active,
		passive:  passive,
		profiles: profiles,
	}
}

type recordRequest struct {
	WasDone bool           `json:"wasDone"`
	Session *sessionParams `json:"session,omitempty"`
}

type sessionParams struct {
	DurationMinutes float64 `json:"durationMinutes"`
}

func (handler *Handler) HandleGetLog(w http.ResponseWriter, r *http.Request) {
	switch category := mux.Vars(r)["category"]; category {
	case objectives.CategoryActive.Name:
		writeLogView(r.Context(), w, handler.active)
	case objectives.CategoryPassive.Name:
		writeLogView(r.Context(), w, handler.passive)
	default:
		http.Error(w, "error, unknown category", http.StatusBadRequest)
	}
}

func (handler *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var written int
	var err error
	switch category := mux.Vars(r)["category"]; category {
	case objectives.CategoryActive.Name:
		written, err = handler.active.Backfill(r.Context())
	case objectives.CategoryPassive.Name:
		written, err = handler.passive.Backfill(r.Context())
	default:
		http.Error(w, "error, unknown category", http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Errorf("daily log backfill error: %s", err)
		http.Error(w, "error, backfill failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"backfilled": %d}`, written))
}

func (handler *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	id, ok := logObjectiveID(w, r)
	if !ok {
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "error, invalid record json", http.StatusBadRequest)
		return
	}

	var err error
	switch category := mux.Vars(r)["category"]; category {
	case objectives.CategoryActive.Name:
		err = handler.recordActive(r.Context(), id, req)
	case objectives.CategoryPassive.Name:
		err = handler.passive.Record(r.Context(), id, req.WasDone, 0)
	default:
		http.Error(w, "error, unknown category", http.StatusBadRequest)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, objectives.ErrObjectiveNotFound):
			http.Error(w, "objective not found", http.StatusNotFound)
		case errors.Is(err, health.ErrInvalidInput), errors.Is(err, health.ErrMissingInput),
			errors.Is(err, profile.ErrProfileNotFound):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("record daily log outcome for %d error: %s", id, err)
			http.Error(w, "error, failed to record outcome", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"recorded": %d}`, id))
}

// recordActive computes the session's calorie estimate from the user
// profile and the objective's exercise parameters before persisting the
// outcome. Without session data the performance stays 0.
func (handler *Handler) recordActive(ctx context.Context, id int64, req recordRequest) error {
	performance := 0.0
	if req.WasDone && req.Session != nil {
		obj, err := handler.active.objectives.Get(ctx, id)
		if err != nil {
			return err
		}
		userProfile, err := handler.profiles.Get(ctx)
		if err != nil {
			return err
		}

		result, err := health.SessionPerformance(userProfile.HealthData(), health.SessionParams{
			Exercise:          string(obj.Exercise),
			DurationMinutes:   req.Session.DurationMinutes,
			SpeedBracketIndex: obj.SpecificData.EstimateSpeed,
			DumbbellWeightKg:  obj.SpecificData.DumbbellWeight,
			Reps:              obj.SpecificData.Reps,
			AmountOfHands:     obj.SpecificData.AmountOfHands,
			AmountOfPushUps:   obj.SpecificData.AmountOfPushUps,
			OneHanded:         obj.SpecificData.AmountOfHands == 1,
		})
		if err != nil {
			return err
		}
		performance = result.Result
	}

	return handler.active.Record(ctx, id, req.WasDone, performance)
}

func (handler *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	var res PendingResult
	var err error
	switch category := mux.Vars(r)["category"]; category {
	case objectives.CategoryActive.Name:
		res, err = handler.active.GetPendingAll(r.Context())
	case objectives.CategoryPassive.Name:
		res, err = handler.passive.GetPendingAll(r.Context())
	default:
		http.Error(w, "error, unknown category", http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Errorf("get pending objectives error: %s", err)
		http.Error(w, "error, failed to get pending objectives", http.StatusInternalServerError)
		return
	}

	resJson, err := json.Marshal(res)
	if err != nil {
		log.Errorf("marshal pending result error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resJson)
}

func (handler *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	id, ok := logObjectiveID(w, r)
	if !ok {
		return
	}

	streak, err := handler.passive.GetStreak(r.Context(), id)
	if err != nil {
		log.Errorf("get streak for %d error: %s", id, err)
		http.Error(w, "error, failed to get streak", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"identifier": %d, "streak": %d}`, id, streak))
}

func writeLogView[T objectives.Objective, E Entry](ctx context.Context, w http.ResponseWriter, engine *Engine[T, E]) {
	l, err := engine.Get(ctx)
	if err != nil {
		log.Errorf("get %s daily log error: %s", engine.category.Name, err)
		http.Error(w, "error, failed to get daily log", http.StatusInternalServerError)
		return
	}

	days, err := l.Sorted()
	if err != nil {
		log.Errorf("sort %s daily log error: %s", engine.category.Name, err)
		http.Error(w, "error, daily log is corrupted", http.StatusInternalServerError)
		return
	}

	daysJson, err := json.Marshal(days)
	if err != nil {
		log.Errorf("marshal %s daily log error: %s", engine.category.Name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resJson := fmt.Sprintf(`{"days": %s, "total": %d}`, daysJson, len(days))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, []byte(resJson))
}

func logObjectiveID(w http.ResponseWriter, r *http.Request) (int64, bool) {
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
