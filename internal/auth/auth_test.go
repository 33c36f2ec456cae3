package auth

import (
	"net/http"
	"testing"

	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
)

func TestRequireApiKey(t *testing.T) {
	handler := RequireApiKey("12345", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithNoContent(w, http.StatusNoContent)
	})

	t.Run("should fail with invalid API key format", func(t *testing.T) {
		headers := map[string][]string{
			"Authorization": {"Key 12345"},
		}
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/sensors", "/v1/sensors", headers, nil, handler)

		utils.TestExpectedStatus(t, rr, http.StatusForbidden)
	})

	t.Run("should fail with invalid API key value", func(t *testing.T) {
		headers := map[string][]string{
			"Authorization": {"ApiKey 1234"},
		}
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/sensors", "/v1/sensors", headers, nil, handler)

		utils.TestExpectedStatus(t, rr, http.StatusForbidden)
		utils.TestExpectedMessage(t, rr, "Invalid api key")
	})

	t.Run("should pass a valid API key", func(t *testing.T) {
		headers := map[string][]string{
			"Authorization": {"ApiKey 12345"},
		}
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/sensors", "/v1/sensors", headers, nil, handler)

		utils.TestExpectedStatus(t, rr, http.StatusNoContent)
	})

	t.Run("should leave the handler open without a key", func(t *testing.T) {
		open := RequireApiKey("", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondWithNoContent(w, http.StatusNoContent)
		})
		rr := utils.TestRequest(t, http.MethodPost, "/v1/sensors", "/v1/sensors", nil, open)

		utils.TestExpectedStatus(t, rr, http.StatusNoContent)
	})
}
