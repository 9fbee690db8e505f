package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pitwall/paddock/internal/domain"
	"github.com/stretchr/testify/assert"
)

func createPendingConfirmation(t *testing.T, e *echo.Echo, handler *Handler) domain.QueryResponse {
	t.Helper()

	// A comparison query runs multiple capabilities and is always gated.
	_, resp := postQuery(t, e, handler, domain.QueryRequest{
		Query: "Compare Hamilton and Verstappen career wins",
	})
	assert.True(t, resp.ConfirmationRequired)
	assert.NotEmpty(t, resp.ConfirmationID)
	return resp
}

func resolveConfirmation(t *testing.T, e *echo.Echo, handler *Handler, confirmationID string, body interface{}) (*httptest.ResponseRecorder, domain.ResolveResult) {
	t.Helper()

	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/confirmations/"+confirmationID+"/resolve", bytes.NewReader(encoded))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/confirmations/:confirmation_id/resolve")
	c.SetParamNames("confirmation_id")
	c.SetParamValues(confirmationID)

	err := handler.ResolveConfirmation(c)
	assert.NoError(t, err)

	var result domain.ResolveResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	return rec, result
}

func TestResolveConfirmationConfirm(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	queryResp := createPendingConfirmation(t, e, handler)

	rec, result := resolveConfirmation(t, e, handler, queryResp.ConfirmationID,
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionConfirm})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.OK)
	assert.Equal(t, queryResp.Response, result.FinalText)
}

func TestResolveConfirmationTwiceConflicts(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	queryResp := createPendingConfirmation(t, e, handler)

	rec, _ := resolveConfirmation(t, e, handler, queryResp.ConfirmationID,
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionConfirm})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, result := resolveConfirmation(t, e, handler, queryResp.ConfirmationID,
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionConfirm})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, result.OK)
	assert.Equal(t, "already_processed", result.Reason)
}

func TestResolveConfirmationNotFound(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	rec, result := resolveConfirmation(t, e, handler, "conf_missing",
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionConfirm})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, result.OK)
}

func TestResolveConfirmationMissingAction(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	rec, _ := resolveConfirmation(t, e, handler, "conf_whatever",
		map[string]string{"decided_by": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveConfirmationRefine(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	queryResp := createPendingConfirmation(t, e, handler)

	rec, result := resolveConfirmation(t, e, handler, queryResp.ConfirmationID,
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionRefine})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.OK)
	assert.NotEmpty(t, result.RefinementPrompt)
	assert.NotEmpty(t, result.Suggestions)
}

func TestGetPendingConfirmationsEndpoint(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	queryResp := createPendingConfirmation(t, e, handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+queryResp.SessionID+"/confirmations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/confirmations")
	c.SetParamNames("session_id")
	c.SetParamValues(queryResp.SessionID)

	err := handler.GetPendingConfirmations(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]domain.ConfirmationRequest
	json.Unmarshal(rec.Body.Bytes(), &body)
	assert.Len(t, body["confirmations"], 1)
	assert.Equal(t, queryResp.ConfirmationID, body["confirmations"][0].ConfirmationID)
}

func TestGetPendingConfirmationsEmpty(t *testing.T) {
	e := echo.New()
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/nope/confirmations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/confirmations")
	c.SetParamNames("session_id")
	c.SetParamValues("nope")

	err := handler.GetPendingConfirmations(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confirmations":[]`)
}
