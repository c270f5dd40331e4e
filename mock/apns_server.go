package mock

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kayac/pushflow/apns"
)

const (
	ApplicationJSON = "application/json"
	MockAPNsID      = "9c8b2a3e-0d4c-4f7b-8e36-4ad1a7b2f6e1"
)

// Magic device tokens answered with an error.
var (
	TokenUnregistered         = strings.Repeat("dead", 16)
	TokenBadDevice            = strings.Repeat("bad0", 16)
	TokenTooManyRequests      = strings.Repeat("429a", 16)
	TokenExpiredProviderToken = strings.Repeat("403e", 16)
	TokenTeapot               = strings.Repeat("418f", 16)
	TokenUnavailable          = strings.Repeat("503c", 16)
)

var requiredHeaders = []struct {
	name string
	code apns.ErrorResponseCode
}{
	{"apns-topic", apns.MissingTopic},
	{"apns-push-type", apns.InvalidPushType},
	{"apns-priority", apns.BadPriority},
}

// APNsMockServer returns a handler imitating the APNs provider API.
func APNsMockServer(verbose bool) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/3/device/", func(w http.ResponseWriter, r *http.Request) {
		if verbose {
			log.Printf("proto:%s method:%s path:%s host:%s push-type:%s", r.Proto, r.Method, r.URL.Path, r.RemoteAddr, r.Header.Get("apns-push-type"))
		}

		w.Header().Set("Content-Type", ApplicationJSON)

		// only allow path which pattern is '/3/device/:token'
		splitPath := strings.Split(r.URL.Path, "/")
		if len(splitPath) != 4 || splitPath[3] == "" {
			writeError(w, http.StatusNotFound, apns.BadPath)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, apns.MethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("authorization"), "bearer ") {
			writeError(w, http.StatusForbidden, apns.MissingProviderToken)
			return
		}
		for _, h := range requiredHeaders {
			if r.Header.Get(h.name) == "" {
				writeError(w, http.StatusBadRequest, h.code)
				return
			}
		}

		switch token := splitPath[3]; token {
		case TokenUnregistered:
			// If the value in the :status header is 410, the value of this key is
			// the last time at which APNs confirmed that the device token was
			// no longer valid for the topic.
			//
			// Stop pushing notifications until the device registers a token with
			// a later timestamp with your provider.
			writeError(w, http.StatusGone, apns.Unregistered)
		case TokenBadDevice:
			w.Header().Set("apns-id", MockAPNsID)
			writeError(w, http.StatusBadRequest, apns.BadDeviceToken)
		case TokenTooManyRequests:
			writeError(w, http.StatusTooManyRequests, apns.TooManyRequests)
		case TokenExpiredProviderToken:
			writeError(w, http.StatusForbidden, apns.ExpiredProviderToken)
		case TokenUnavailable:
			writeError(w, http.StatusServiceUnavailable, apns.ServiceUnavailable)
		case TokenTeapot:
			w.WriteHeader(http.StatusTeapot)
			fmt.Fprint(w, "I'm a teapot")
		default:
			w.Header().Set("apns-id", MockAPNsID)
			w.WriteHeader(http.StatusOK)
		}
	})

	return mux
}

func writeError(w http.ResponseWriter, status int, code apns.ErrorResponseCode) {
	w.WriteHeader(status)
	fmt.Fprint(w, createErrorResponse(code, status))
}

func createErrorResponse(ermsg apns.ErrorResponseCode, status int) string {
	er := apns.ErrorResponse{
		Reason: ermsg.String(),
	}
	if status == http.StatusGone {
		er.Timestamp = time.Now().UnixNano() / int64(time.Millisecond)
	}
	der, _ := json.Marshal(er)
	return string(der)
}
