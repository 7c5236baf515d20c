package backend

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

// decoder keeps numbers as json.Number so large integers survive unchanged.
var decoder = jsoniter.Config{
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// DefaultRemoteMessage is used when a failed envelope carries no message.
const DefaultRemoteMessage = "Unknown error"

// RawEnvelope decodes the body as JSON. A body that is not valid JSON is
// returned as a string holding the raw text.
type RawEnvelope struct{}

// Decode implements Envelope.
func (RawEnvelope) Decode(body []byte) (any, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return string(body), nil
	}
	return v, nil
}

// CodeDataEnvelope interprets {"code":0,"data":...} responses. A code other
// than 0, or a missing code, is a remote query error carrying "msg".
type CodeDataEnvelope struct{}

// Decode implements Envelope.
func (CodeDataEnvelope) Decode(body []byte) (any, error) {
	if !gjson.ValidBytes(body) {
		return nil, Errorf(KindRemoteQueryError, "decode", "response is not valid JSON")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, Errorf(KindRemoteQueryError, "decode", "response is not a JSON object")
	}

	code := parsed.Get("code")
	if !code.Exists() || code.Type != gjson.Number || code.Float() != 0 {
		return nil, &Error{Kind: KindRemoteQueryError, Stage: "query", Message: remoteMessage(parsed)}
	}

	data := parsed.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return []any{}, nil
	}
	v, err := decodeJSON([]byte(data.Raw))
	if err != nil {
		return nil, Errorf(KindRemoteQueryError, "decode", "invalid data field: %v", err)
	}
	return v, nil
}

func remoteMessage(parsed gjson.Result) string {
	msg := parsed.Get("msg")
	if !msg.Exists() || msg.Type == gjson.Null || msg.String() == "" {
		return DefaultRemoteMessage
	}
	return msg.String()
}

func decodeJSON(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	var v any
	if err := decoder.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return v, nil
}
