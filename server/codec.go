package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/multierr"

	"bumparena/game"
)

// 入站消息类型
const (
	MsgFindMatch        = "find_match"
	MsgCancelMatch      = "cancel_match"
	MsgReadyMatch       = "ready_match"
	MsgCancelReadyMatch = "cancel_ready_match"
	MsgInput            = "input"
)

// 服务端自身的出站消息类型（对局事件使用 game.Event.Kind）
const (
	MsgMatchingInfo        = "matching_info"
	MsgReadyMatching       = "ready_matching"
	MsgCancelReadyMatching = "cancel_ready_matching"
	MsgMatchFound          = "match_found"
	MsgError               = "error"
)

// MatchingInfo 排队人数变化
type MatchingInfo struct {
	Current int `json:"current" msgpack:"current"`
	Max     int `json:"max" msgpack:"max"`
}

// ReadyMatching 人数已凑齐，等待本组所有人确认（ready_match）
type ReadyMatching struct {
	Group   string `json:"group" msgpack:"group"`
	Slot    int    `json:"slot" msgpack:"slot"`
	Players int    `json:"players" msgpack:"players"`
}

// MatchFound 匹配成功：所在房间与槽位
type MatchFound struct {
	Room    string `json:"room" msgpack:"room"`
	Slot    int    `json:"slot" msgpack:"slot"`
	Players int    `json:"players" msgpack:"players"`
}

// ErrorMessage 请求被拒绝时回给客户端
type ErrorMessage struct {
	Message string `json:"message" msgpack:"message"`
}

// InputMessage 入站输入，边沿取值 none/pressed/released
// 示例：{"t":"input","p":{"left":"pressed"}}
type InputMessage struct {
	Left  string `json:"left,omitempty" msgpack:"left,omitempty"`
	Right string `json:"right,omitempty" msgpack:"right,omitempty"`
	Rush  string `json:"rush,omitempty" msgpack:"rush,omitempty"`
}

// ToInput 解析三个按键边沿，所有非法字段一并报告
func (m InputMessage) ToInput() (game.Input, error) {
	var in game.Input
	var err, e error
	in.Left, e = game.ParseInputEdge(m.Left)
	err = multierr.Append(err, e)
	in.Right, e = game.ParseInputEdge(m.Right)
	err = multierr.Append(err, e)
	in.Rush, e = game.ParseInputEdge(m.Rush)
	err = multierr.Append(err, e)
	return in, err
}

// ClientMessage 解码后的入站消息；Input 只在 Type 为 input 时有值
type ClientMessage struct {
	Type  string
	Input *InputMessage
}

// Codec 出站信封编码与入站消息解码：{"t": 类型, "p": 载荷}
type Codec interface {
	Name() string
	// FrameType websocket 帧类型（文本或二进制）
	FrameType() int
	Encode(kind string, payload any) ([]byte, error)
	Decode(data []byte) (ClientMessage, error)
}

// NewCodec 按配置名创建编解码器
func NewCodec(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

func decodeClientMessage(typ string, hasPayload bool, unmarshal func(v any) error) (ClientMessage, error) {
	msg := ClientMessage{Type: typ}
	switch typ {
	case MsgFindMatch, MsgCancelMatch, MsgReadyMatch, MsgCancelReadyMatch:
		return msg, nil
	case MsgInput:
		var in InputMessage
		if hasPayload {
			if err := unmarshal(&in); err != nil {
				return msg, fmt.Errorf("decode input payload: %w", err)
			}
		}
		msg.Input = &in
		return msg, nil
	default:
		return msg, fmt.Errorf("unknown message type %q", typ)
	}
}

// JSONCodec 文本帧 JSON 信封
type JSONCodec struct{}

type jsonEnvelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

func (JSONCodec) Name() string   { return "json" }
func (JSONCodec) FrameType() int { return websocket.TextMessage }

func (JSONCodec) Encode(kind string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.Marshal(jsonEnvelope{Type: kind, Payload: p})
}

func (JSONCodec) Decode(data []byte) (ClientMessage, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("decode envelope: %w", err)
	}
	return decodeClientMessage(env.Type, len(env.Payload) > 0, func(v any) error {
		return json.Unmarshal(env.Payload, v)
	})
}

// MsgpackCodec 二进制帧 msgpack 信封
type MsgpackCodec struct{}

type msgpackEnvelope struct {
	Type    string             `msgpack:"t"`
	Payload msgpack.RawMessage `msgpack:"p,omitempty"`
}

func (MsgpackCodec) Name() string   { return "msgpack" }
func (MsgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(kind string, payload any) ([]byte, error) {
	p, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return msgpack.Marshal(msgpackEnvelope{Type: kind, Payload: p})
}

func (MsgpackCodec) Decode(data []byte) (ClientMessage, error) {
	var env msgpackEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("decode envelope: %w", err)
	}
	return decodeClientMessage(env.Type, len(env.Payload) > 0, func(v any) error {
		return msgpack.Unmarshal(env.Payload, v)
	})
}
