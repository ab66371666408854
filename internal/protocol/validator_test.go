package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"join_session","sessionId":"ROOM1","payload":{"displayName":"Hana"}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeJoinSession, env.Type)
	assert.Equal(t, "ROOM1", env.SessionID)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`{"sessionId":"ROOM1"}`))
	assert.Error(t, err, "missing type must be rejected")
}

func TestDecodePayload(t *testing.T) {
	v := NewValidator()

	env, err := DecodeEnvelope([]byte(`{"type":"join_session","payload":{"displayName":"Hana"}}`))
	require.NoError(t, err)
	var join JoinSession
	require.NoError(t, v.DecodePayload(env, &join))
	assert.Equal(t, "Hana", join.DisplayName)

	// missing payload
	env, err = DecodeEnvelope([]byte(`{"type":"join_session"}`))
	require.NoError(t, err)
	assert.Error(t, v.DecodePayload(env, &JoinSession{}))

	// required field absent
	env, err = DecodeEnvelope([]byte(`{"type":"join_session","payload":{}}`))
	require.NoError(t, err)
	assert.Error(t, v.DecodePayload(env, &JoinSession{}))

	// name over the length limit
	long := strings.Repeat("a", 65)
	env, err = DecodeEnvelope([]byte(`{"type":"join_session","payload":{"displayName":"` + long + `"}}`))
	require.NoError(t, err)
	assert.Error(t, v.DecodePayload(env, &JoinSession{}))
}

func TestDecodeBoardStateSyncPrefix(t *testing.T) {
	v := NewValidator()

	env, err := DecodeEnvelope([]byte(`{"type":"board_state_sync","payload":{"imageDataUrl":"data:image/png;base64,iVBOR"}}`))
	require.NoError(t, err)
	assert.NoError(t, v.DecodePayload(env, &BoardStateSync{}))

	env, err = DecodeEnvelope([]byte(`{"type":"board_state_sync","payload":{"imageDataUrl":"http://evil.example/x.png"}}`))
	require.NoError(t, err)
	assert.Error(t, v.DecodePayload(env, &BoardStateSync{}))
}

func TestValidateDrawingToolWhitelist(t *testing.T) {
	v := NewValidator()

	_, err := v.ValidateDrawing("laser", map[string]interface{}{})
	assert.Error(t, err)

	// clear carries no geometry
	data, err := v.ValidateDrawing(ToolClear, nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestValidateDrawingSchemas(t *testing.T) {
	v := NewValidator()

	_, err := v.ValidateDrawing(ToolDot, map[string]interface{}{
		"x": 10.0, "y": 20.0, "color": "#ff0000", "lineWidth": 3.0,
	})
	assert.NoError(t, err)

	_, err = v.ValidateDrawing(ToolSegment, map[string]interface{}{
		"x1": 0.0, "y1": 0.0, "x2": 5.0, "y2": 5.0, "eraser": true,
	})
	assert.NoError(t, err)

	_, err = v.ValidateDrawing(ToolShapeCircle, map[string]interface{}{
		"cx": 1.0, "cy": 1.0, "radius": 40.0,
	})
	assert.NoError(t, err)

	// coordinate out of range
	_, err = v.ValidateDrawing(ToolDot, map[string]interface{}{
		"x": 2000000.0, "y": 0.0,
	})
	assert.Error(t, err)

	// negative radius
	_, err = v.ValidateDrawing(ToolShapeCircle, map[string]interface{}{
		"cx": 1.0, "cy": 1.0, "radius": -5.0,
	})
	assert.Error(t, err)

	// text is required for the text tool
	_, err = v.ValidateDrawing(ToolText, map[string]interface{}{
		"x": 0.0, "y": 0.0,
	})
	assert.Error(t, err)
}

func TestValidateDrawingSanitizesStrings(t *testing.T) {
	v := NewValidator()

	data, err := v.ValidateDrawing(ToolText, map[string]interface{}{
		"x": 0.0, "y": 0.0, "text": "<b>hello</b> world",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", data["text"])

	data, err = v.ValidateDrawing(ToolText, map[string]interface{}{
		"x": 0.0, "y": 0.0, "text": "hi<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, data["text"], "<script>")
}

func TestSanitizeString(t *testing.T) {
	v := NewValidator()
	assert.Equal(t, "Hana", v.SanitizeString("<i>Hana</i>"))
	assert.NotContains(t, v.SanitizeString("<script>alert(1)</script>Bob"), "script")
}

func TestEncodeRoundTrip(t *testing.T) {
	msg, err := Encode(TypeUserLeft, "ROOM1", UserLeft{ID: "u1", Name: "Hana"})
	require.NoError(t, err)

	env, err := DecodeEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, TypeUserLeft, env.Type)
	assert.Equal(t, "ROOM1", env.SessionID)
	assert.JSONEq(t, `{"id":"u1","name":"Hana"}`, string(env.Payload))
}
