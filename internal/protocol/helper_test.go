package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEncodeDecode(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgJoinRoom, JoinRoomPayload{
		RoomCode:   "AB12",
		PlayerName: "小明",
		ClientID:   "client-1",
	})

	data, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgJoinRoom, decoded.Type)

	payload, err := ParsePayload[JoinRoomPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "AB12", payload.RoomCode)
	assert.Equal(t, "小明", payload.PlayerName)
	assert.Equal(t, "client-1", payload.ClientID)
}

func TestDecodeInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{bad json`))
	assert.Error(t, err)
}

func TestMessageWithoutPayload(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgNextCard, nil)
	data, err := msg.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "payload", "空 payload 不应出现在 JSON 中")

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgNextCard, decoded.Type)
	assert.Nil(t, decoded.Payload)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(ErrCodeRoomNotFound)
	require.Equal(t, MsgError, msg.Type)

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeRoomNotFound, payload.Code)
	assert.Equal(t, ErrorMessages[ErrCodeRoomNotFound], payload.Message)
}

func TestNewErrorMessageWithText(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessageWithText(ErrCodeRateLimit, "发言太快了")
	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeRateLimit, payload.Code)
	assert.Equal(t, "发言太快了", payload.Message)
}

func TestUpdateRulesPayloadPartial(t *testing.T) {
	t.Parallel()

	// 只带部分字段的规则补丁，缺失字段应保持 nil
	msg, err := Decode([]byte(`{"type":"update_rules","payload":{"win_target":5}}`))
	require.NoError(t, err)

	payload, err := ParsePayload[UpdateRulesPayload](msg)
	require.NoError(t, err)
	require.NotNil(t, payload.WinTarget)
	assert.Equal(t, 5, *payload.WinTarget)
	assert.Nil(t, payload.Packs)
	assert.Nil(t, payload.TeamCount)
}
