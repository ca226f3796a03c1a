package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/plusone-app/plusone/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// HandleBMI calculates the body mass index from query parameters:
// age, gender, weight (kg) and height (cm).
func (handler *Handler) HandleBMI(w http.ResponseWriter, r *http.Request) {
	age, gender, weight, height, ok := subjectParams(w, r)
	if !ok {
		return
	}

	res, err := BMI(age, gender, weight, height)
	if err != nil {
		writeCalculationError(w, "bmi", err)
		return
	}

	writeResult(w, res)
}

// HandleBFP calculates the BMI derived body fat percentage from query
// parameters: age, gender, weight (kg) and height (cm).
func (handler *Handler) HandleBFP(w http.ResponseWriter, r *http.Request) {
	age, gender, weight, height, ok := subjectParams(w, r)
	if !ok {
		return
	}

	res, err := BFP(age, gender, weight, height)
	if err != nil {
		writeCalculationError(w, "bfp", err)
		return
	}

	writeResult(w, res)
}

// HandleUSNavyBFP calculates the body fat percentage via the US Navy tape
// method from query parameters: gender, height, neck, waist and, for female
// subjects, hip (all in cm).
func (handler *Handler) HandleUSNavyBFP(w http.ResponseWriter, r *http.Request) {
	gender, ok := genderParam(w, r)
	if !ok {
		return
	}

	height, ok := floatParam(w, r, "height")
	if !ok {
		return
	}
	neck, ok := floatParam(w, r, "neck")
	if !ok {
		return
	}
	waist, ok := floatParam(w, r, "waist")
	if !ok {
		return
	}

	var hip *float64
	if hipStr := r.URL.Query().Get("hip"); hipStr != "" {
		hipVal, err := strconv.ParseFloat(hipStr, 64)
		if err != nil {
			http.Error(w, "error, hip NaN", http.StatusBadRequest)
			return
		}
		hip = &hipVal
	}

	res, err := USNavyBFP(gender, height, neck, waist, hip)
	if err != nil {
		writeCalculationError(w, "usnavy bfp", err)
		return
	}

	writeResult(w, res)
}

// HandleRunningMET returns the MET value for running at the speed given by
// the "speed" query parameter, in km/h.
func (handler *Handler) HandleRunningMET(w http.ResponseWriter, r *http.Request) {
	speed, ok := floatParam(w, r, "speed")
	if !ok {
		return
	}

	met, err := RunningMET(speed)
	if err != nil {
		writeCalculationError(w, "met", err)
		return
	}

	writeResult(w, Result{
		Result:      met,
		Context:     "running",
		Explanation: "The Metabolic Equivalent of Task expresses the energy cost of an activity relative to resting.",
	})
}

func subjectParams(w http.ResponseWriter, r *http.Request) (int, Gender, float64, float64, bool) {
	ageStr := r.URL.Query().Get("age")
	age, err := strconv.Atoi(ageStr)
	if err != nil {
		http.Error(w, "error, age NaN", http.StatusBadRequest)
		return 0, "", 0, 0, false
	}

	gender, ok := genderParam(w, r)
	if !ok {
		return 0, "", 0, 0, false
	}

	weight, ok := floatParam(w, r, "weight")
	if !ok {
		return 0, "", 0, 0, false
	}
	height, ok := floatParam(w, r, "height")
	if !ok {
		return 0, "", 0, 0, false
	}

	return age, gender, weight, height, true
}

func genderParam(w http.ResponseWriter, r *http.Request) (Gender, bool) {
	switch gender := Gender(r.URL.Query().Get("gender")); gender {
	case Male, Female:
		return gender, true
	default:
		http.Error(w, "error, gender invalid", http.StatusBadRequest)
		return "", false
	}
}

func floatParam(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	val, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return val, true
}

func writeCalculationError(w http.ResponseWriter, calc string, err error) {
	switch {
	case errors.Is(err, ErrMissingInput):
		http.Error(w, "error, missing input", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "error, invalid input", http.StatusBadRequest)
	default:
		log.Errorf("%s calculation error: %s", calc, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeResult(w http.ResponseWriter, res Result) {
	resJson, err := json.Marshal(res)
	if err != nil {
		log.Errorf("marshal health result error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resJson)
}
