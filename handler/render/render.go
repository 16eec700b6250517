package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"lendex/core"

	"github.com/sirupsen/logrus"
	"github.com/yiplee/structs"
)

type H map[string]interface{}

var errInternal = errors.New("internal error")

func init() {
	structs.DefaultTagName = "json"
}

type errorResponse struct {
	Code core.ErrorCode `json:"code"`
	Msg  string         `json:"msg"`
}

func write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render: encode response")
	}
}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	write(w, http.StatusOK, H{"data": v})
}

// Fields render v keeping only the requested json fields,
// fields is a comma separated list, empty keeps everything
func Fields(w http.ResponseWriter, v interface{}, fields string) {
	if fields == "" {
		JSON(w, v)
		return
	}

	keep := strings.Split(fields, ",")
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		projected := make([]H, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			projected = append(projected, project(rv.Index(i).Interface(), keep))
		}

		JSON(w, projected)
		return
	}

	JSON(w, project(v, keep))
}

func project(v interface{}, keep []string) H {
	all := structs.Map(v)
	out := make(H, len(keep))
	for _, key := range keep {
		key = strings.TrimSpace(key)
		if value, ok := all[key]; ok {
			out[key] = value
		}
	}

	return out
}

// Error write error
func Error(w http.ResponseWriter, statusCode int, code core.ErrorCode, err error) {
	write(w, statusCode, errorResponse{Code: code, Msg: err.Error()})
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, core.ErrInvalidArgument, err)
}

// NotFound not found error
func NotFound(w http.ResponseWriter, code core.ErrorCode, err error) {
	Error(w, http.StatusNotFound, code, err)
}

// InternalError internal error, the cause is logged and not exposed
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logrus.WithError(err).WithField("path", r.URL.Path).Errorln("request failed")
	Error(w, http.StatusInternalServerError, core.ErrUnknown, errInternal)
}
