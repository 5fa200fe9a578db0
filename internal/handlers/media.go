package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"
)

func (h *MessageHandler) handlePhoto(ctx context.Context, req *request) error {
	caption := req.msg.Caption
	if caption == "" {
		caption = relayText("DefaultPhotoCaption", nil)
	}
	h.forwardToOperator(ctx, req, req.msg)
	h.notifyOperator(ctx, req, relayText("RelayPhoto", map[string]interface{}{"Caption": escape(caption)}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgPhotoReceived", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleVideo(ctx context.Context, req *request) error {
	caption := req.msg.Caption
	if caption == "" {
		caption = relayText("DefaultVideoCaption", nil)
	}
	h.forwardToOperator(ctx, req, req.msg)
	h.notifyOperator(ctx, req, relayText("RelayVideo", map[string]interface{}{"Caption": escape(caption)}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgVideoReceived", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleDocument(ctx context.Context, req *request) error {
	name := req.msg.Document.FileName
	if name == "" {
		name = relayText("DefaultDocumentName", nil)
	}
	h.forwardToOperator(ctx, req, req.msg)
	h.notifyOperator(ctx, req, relayText("RelayDocument", map[string]interface{}{"Name": escape(name)}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgDocumentReceived", nil), mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleContact(ctx context.Context, req *request) error {
	contact := req.msg.Contact
	name := escape(strings.TrimSpace(contact.FirstName + " " + contact.LastName))
	phone := escape(contact.PhoneNumber)

	h.notifyOperator(ctx, req, relayText("RelayContact", map[string]interface{}{"Name": name, "Phone": phone}))
	text := h.msg(req, "MsgContactReceived", map[string]interface{}{"Name": name, "Phone": phone})
	return h.reply(ctx, req.chatID, text, mainMenuKeyboard(req.localizer))
}

func (h *MessageHandler) handleLocation(ctx context.Context, req *request) error {
	loc := req.msg.Location
	h.notifyOperator(ctx, req, relayText("RelayLocation", map[string]interface{}{
		"Lat": fmt.Sprintf("%.6f", loc.Latitude),
		"Lon": fmt.Sprintf("%.6f", loc.Longitude),
	}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgLocationReceived", nil), mainMenuKeyboard(req.localizer))
}

// HandleAlbum processes the messages of one media group collected by the
// album collector. Every item is logged and forwarded; the operator gets one
// summary and the user one acknowledgement.
func (h *MessageHandler) HandleAlbum(ctx context.Context, groupID string, messages []telego.Message) error {
	if len(messages) == 0 {
		return nil
	}
	first := messages[0]
	if first.From == nil {
		log.Printf("Ignoring media group %s without sender", groupID)
		return nil
	}

	req := h.newRequest(ctx, first)
	req.logPrefix = fmt.Sprintf("[Router User:%d Album:%s]", req.userID, groupID)
	log.Printf("%s Processing %d item(s)", req.logPrefix, len(messages))

	for _, m := range messages {
		if m.From == nil {
			m.From = first.From
		}
		h.logInbound(ctx, req, inboundLogEntry(m))
		h.forwardToOperator(ctx, req, m)
	}

	count := len(messages)
	h.notifyOperator(ctx, req, relayText("RelayAlbum", map[string]interface{}{"Count": count}))
	return h.reply(ctx, req.chatID, h.msg(req, "MsgAlbumReceived", map[string]interface{}{"Count": count}), mainMenuKeyboard(req.localizer))
}
