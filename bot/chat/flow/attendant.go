package flow

import (
	"CallService/bot/chat"
	"CallService/bot/chat/commands"
	"CallService/entity"
	"CallService/internal/lib/sl"
	"context"
	"fmt"
	"time"
)

const attendantIdleText = "No momento, você não está em nem um atendimento; aguarde até ser vinculado a um."

// handleAttendant routes one attendant message: accept/decline button
// callbacks first, then the command grammar, then the verbatim relay
// to the bound customer.
func (m *Manager) handleAttendant(ctx context.Context, attendant *entity.Attendant, msg *chat.Message) error {
	if msg.ButtonReply != nil {
		switch msg.ButtonReply.Action {
		case chat.ActionAccept:
			return m.handleAccept(ctx, attendant, msg.ButtonReply.TransactionID)
		case chat.ActionDecline:
			return m.handleDecline(ctx, attendant, msg.ButtonReply.TransactionID)
		}
		return nil
	}

	if commands.IsCommand(msg.Text) {
		if result, handled := m.commands.Execute(ctx, attendant, msg); handled {
			return m.applyCommandResult(ctx, attendant, result)
		}
	}

	transaction, ok := m.cache.Transaction.FindOpenByAttendant(ctx, attendant.AttendantID)
	if !ok {
		m.sendText(ctx, msg.Wuid, attendantIdleText, delayOpts(1500*time.Millisecond))
		return nil
	}
	customer, ok := m.cache.Customer.FindByID(ctx, transaction.CustomerID)
	if !ok {
		return fmt.Errorf("customer %d not found", transaction.CustomerID)
	}

	text := msg.Text
	if text == "" {
		text = fmt.Sprintf("[%s recebido]", msg.Kind)
	}
	m.sendText(ctx, customer.Wuid, text, delayOpts(1500*time.Millisecond))
	return nil
}

// applyCommandResult turns a command's state transitions into events
// and re-dispatched work.
func (m *Manager) applyCommandResult(ctx context.Context, attendant *entity.Attendant, result *commands.Result) error {
	if result == nil {
		return nil
	}
	if result.Finished != nil {
		m.publish(EventFinished, result.Finished)
	}
	if result.Redirect != nil {
		m.publish(EventTransferred, result.Redirect)
		if err := m.dispatchQueue(ctx, result.Redirect); err != nil {
			m.log.Error("redirect dispatch failed", sl.Err(err))
		}
	}
	if result.Next != nil {
		return m.offerTo(ctx, attendant, result.Next)
	}
	return nil
}
