package server

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"bumparena/game"
)

func TestNewCodec(t *testing.T) {
	c, err := NewCodec("json")
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, c.FrameType())

	c, err = NewCodec("msgpack")
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, c.FrameType())

	_, err = NewCodec("xml")
	assert.Error(t, err)
}

func TestJSONEncodeEvent(t *testing.T) {
	ev := game.KillLog{Victim: 2, Killer: game.NoKiller}
	data, err := JSONCodec{}.Encode(ev.Kind(), ev)
	require.NoError(t, err)

	var env struct {
		T string          `json:"t"`
		P json.RawMessage `json:"p"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "kill_log", env.T)

	var got game.KillLog
	require.NoError(t, json.Unmarshal(env.P, &got))
	assert.Equal(t, ev, got)
}

func TestMsgpackEncodeEvent(t *testing.T) {
	ev := game.MapSizeChanged{Phase: 1, Radius: 1100}
	data, err := MsgpackCodec{}.Encode(ev.Kind(), ev)
	require.NoError(t, err)

	var env struct {
		T string             `msgpack:"t"`
		P msgpack.RawMessage `msgpack:"p"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &env))
	assert.Equal(t, "map_size_changed", env.T)

	var got game.MapSizeChanged
	require.NoError(t, msgpack.Unmarshal(env.P, &got))
	assert.Equal(t, ev, got)
}

func TestDecodeClientMessages(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(MsgInput, InputMessage{Left: "pressed", Rush: "released"})
			require.NoError(t, err)
			msg, err := codec.Decode(data)
			require.NoError(t, err)
			require.Equal(t, MsgInput, msg.Type)
			require.NotNil(t, msg.Input)

			in, err := msg.Input.ToInput()
			require.NoError(t, err)
			assert.Equal(t, game.Input{Left: game.EdgePressed, Rush: game.EdgeReleased}, in)

			for _, typ := range []string{MsgFindMatch, MsgCancelMatch, MsgReadyMatch, MsgCancelReadyMatch} {
				data, err = codec.Encode(typ, nil)
				require.NoError(t, err)
				msg, err = codec.Decode(data)
				require.NoError(t, err, typ)
				assert.Equal(t, typ, msg.Type)
				assert.Nil(t, msg.Input)
			}

			data, err = codec.Encode("teleport", nil)
			require.NoError(t, err)
			_, err = codec.Decode(data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeInputWithoutPayload(t *testing.T) {
	msg, err := JSONCodec{}.Decode([]byte(`{"t":"input"}`))
	require.NoError(t, err)
	in, err := msg.Input.ToInput()
	require.NoError(t, err)
	assert.Equal(t, game.Input{}, in)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("not json"))
	assert.Error(t, err)
	_, err = MsgpackCodec{}.Decode([]byte{0xc1})
	assert.Error(t, err)
}

func TestInputMessageReportsEveryBadEdge(t *testing.T) {
	_, err := InputMessage{Left: "hold", Right: "pressed", Rush: "twice"}.ToInput()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hold")
	assert.Contains(t, err.Error(), "twice")
}
