package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fwojciec/kaveri"
)

// Ensure Client implements kaveri.SearchClient and kaveri.SessionProber at
// compile time.
var (
	_ kaveri.SearchClient  = (*Client)(nil)
	_ kaveri.SessionProber = (*Client)(nil)
)

// searchResponseOK is the envelope code the portal uses for a successful
// search; anything else carries a human-readable responseMessage.
const searchResponseOK = 1000

// searchPayload mirrors the NewECSearch form. The party name goes in
// firstName; the portal matches it against the full recorded name.
type searchPayload struct {
	VillageCode string `json:"_VillageCode"`
	FromDate    string `json:"_FromDate"`
	ToDate      string `json:"_ToDate"`
	EcFilter    string `json:"EcFilter"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	CaptchaID   string `json:"captchaID"`
	CaptchaCode string `json:"captchaCode"`
}

// searchEnvelope is the outer response shape. Data is a JSON-encoded string
// holding the result rows, not an inline array.
type searchEnvelope struct {
	ResponseCode    int    `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
	Data            string `json:"data"`
}

// Search issues one authenticated EC search. Remote rejections are reported
// through the response status, not as errors; an error return means the
// call itself could not be completed.
func (c *Client) Search(ctx context.Context, sr kaveri.SearchRequest) (*kaveri.SearchResponse, error) {
	payload := searchPayload{
		VillageCode: strconv.Itoa(sr.VillageCode),
		FromDate:    sr.Params.FromDate,
		ToDate:      sr.Params.ToDate,
		EcFilter:    "n",
		FirstName:   sr.Params.PartyName,
		CaptchaID:   sr.CaptchaID,
		CaptchaCode: sr.CaptchaText,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/NewECSearch", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	applySession(req, sr.Session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "search request failed: %s", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &kaveri.SearchResponse{Status: kaveri.SearchUnauthorized, Message: "session rejected"}, nil
	case resp.StatusCode != http.StatusOK:
		return &kaveri.SearchResponse{Status: kaveri.SearchError, Message: "HTTP " + strconv.Itoa(resp.StatusCode)}, nil
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, kaveri.Errorf(kaveri.EUNAVAILABLE, "search response is not valid JSON: %s", err)
	}

	if envelope.ResponseCode != searchResponseOK {
		return &kaveri.SearchResponse{
			Status:  classifyMessage(envelope.ResponseMessage),
			Message: envelope.ResponseMessage,
		}, nil
	}

	rows, err := parseRows(envelope.Data)
	if err != nil {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "parsing search rows: %s", err)
	}

	return &kaveri.SearchResponse{Status: kaveri.SearchOK, Rows: rows}, nil
}

// classifyMessage maps a non-success responseMessage onto a status. The
// portal has no stable machine-readable codes beyond 1000, so this keys on
// the message text.
func classifyMessage(message string) kaveri.SearchStatus {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "captcha"):
		return kaveri.SearchInvalidCaptcha
	case strings.Contains(lower, "session") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "login"):
		return kaveri.SearchUnauthorized
	default:
		return kaveri.SearchError
	}
}

// parseRows decodes the data string into ordered field lists. A plain
// unmarshal into maps would lose the column order the portal form defines,
// so the objects are walked token by token.
func parseRows(data string) ([][]kaveri.Field, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('[') {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "expected a JSON array, got %v", tok)
	}

	var rows [][]kaveri.Field
	for dec.More() {
		row, err := parseRow(dec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseRow(dec *json.Decoder) ([]kaveri.Field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, kaveri.Errorf(kaveri.EINTERNAL, "expected a JSON object, got %v", tok)
	}

	var fields []kaveri.Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, kaveri.Errorf(kaveri.EINTERNAL, "expected an object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		fields = append(fields, kaveri.Field{Name: key, Value: fieldValue(raw)})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// fieldValue renders one raw JSON value as display text. Strings are
// unquoted, null becomes empty, and anything else keeps its JSON form.
func fieldValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

// Probe makes a lightweight authenticated call to check whether the portal
// still accepts the session. The dropdown endpoint is the cheapest call
// that exercises the session headers.
func (c *Client) Probe(ctx context.Context, session *kaveri.Session) error {
	body, err := json.Marshal(struct{}{})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/GetDistrictAsync", bytes.NewReader(body))
	if err != nil {
		return err
	}
	applySession(req, session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "probe failed: %s", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return kaveri.Errorf(kaveri.EUNAUTHORIZED, "portal rejected the session")
	case resp.StatusCode != http.StatusOK:
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "probe returned HTTP %d", resp.StatusCode)
	}
	return nil
}
