package http

import (
	"encoding/json"
	"time"

	"github.com/olegsm/talkie-server/internal/core"
	"github.com/olegsm/talkie-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.EventNewMessage:
		var data proto.NewMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ChatID == 0 || len(data.Members) == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "chatId and members are required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			ChatID:  data.ChatID,
			Members: data.Members,
			Content: data.Message,
		}, nil, nil
	case proto.EventStartTyping, proto.EventStopTyping:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ChatID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "chatId is required"}, nil
		}
		kind := core.CommandStartTyping
		if inbound.Type == proto.EventStopTyping {
			kind = core.CommandStopTyping
		}
		return &core.Command{
			Kind:    kind,
			ChatID:  data.ChatID,
			Members: data.Members,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data: proto.EventMessageData{
				ChatID:  event.ChatID,
				Message: relayMessage(event.Message),
			},
		}
	case core.EventNewMessageAlert:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessageAlert,
			Data:  proto.EventChatData{ChatID: event.ChatID},
		}
	case core.EventStartTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStartTyping,
			Data:  proto.EventChatData{ChatID: event.ChatID},
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStopTyping,
			Data:  proto.EventChatData{ChatID: event.ChatID},
		}
	case core.EventOnlineUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsers,
			Data:  proto.EventOnlineUsersData{Users: event.Users},
		}
	case core.EventOfflineNotice:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOfflineNotice,
			Data:  proto.EventChatData{ChatID: event.ChatID},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func relayMessage(msg core.Message) proto.RelayMessage {
	attachments := make([]proto.Attachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, proto.Attachment{PublicID: a.PublicID, URL: a.URL})
	}
	return proto.RelayMessage{
		ID:          msg.ID,
		Content:     msg.Content,
		Sender:      proto.Sender{ID: msg.SenderID, Name: msg.SenderName},
		ChatID:      msg.ChatID,
		Attachments: attachments,
		CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
	}
}
