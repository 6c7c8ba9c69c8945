package flow

import (
	"CallService/bot/chat"
	"CallService/entity"
	"CallService/internal/cache"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	newRequestText = "⚠️ *ATENÇÃO* ⚠️\nNova solicitação de atendimento."

	alreadyTakenText = "Este atendimento já foi aceito por outro atendente."

	declinedText = "Tudo bem!\nO atendimento será redirecionado para outro atendente."
)

// dispatchQueue tries to place the freshly queued transaction with an
// attendant. When nobody is free the transaction simply stays in the
// queue; a later &end picks it up.
func (m *Manager) dispatchQueue(ctx context.Context, transaction *entity.Transaction) error {
	return m.offer(ctx, transaction, nil)
}

// offer runs one round of the matching algorithm. exclude widens the
// occupied set, used to skip an attendant that just declined.
func (m *Manager) offer(ctx context.Context, transaction *entity.Transaction, exclude map[int64]bool) error {
	sectorID := transaction.SectorID
	if sectorID == 0 {
		// Single-sector deployment: the intake never asked, so the
		// sole sector is resolved here and bound to the transaction.
		// Sector scans filter the store on the real id; a transaction
		// left at zero would be invisible to them.
		sectors := m.cache.Sector.All(ctx)
		if len(sectors) == 0 {
			return fmt.Errorf("no sectors configured")
		}
		sectorID = sectors[0].SectorID
		updated, err := m.cache.Transaction.Update(ctx, transaction.TransactionID,
			cache.TransactionPatch{SectorID: &sectorID})
		if err != nil {
			return fmt.Errorf("binding sector: %w", err)
		}
		if updated != nil {
			transaction = updated
		}
	}

	waiting, err := m.cache.Transaction.SectorNotProcessing(ctx, sectorID)
	if err != nil {
		return fmt.Errorf("scanning sector queue: %w", err)
	}

	occupied := make(map[int64]bool, len(waiting)+len(exclude))
	for i := range waiting {
		if waiting[i].AttendantID != 0 {
			occupied[waiting[i].AttendantID] = true
		}
	}
	for id := range exclude {
		occupied[id] = true
	}

	attendant, ok := m.cache.Attendant.FirstFreeInSector(ctx, sectorID, occupied)
	if !ok {
		m.log.Info("no free attendant, request stays queued",
			slog.Int64("transaction_id", transaction.TransactionID),
			slog.Int64("sector_id", sectorID))
		return nil
	}
	return m.offerTo(ctx, attendant, transaction)
}

// offerTo sends the service-request prompt with the accept and decline
// buttons to one attendant.
func (m *Manager) offerTo(ctx context.Context, attendant *entity.Attendant, transaction *entity.Transaction) error {
	customer, ok := m.cache.Customer.FindByID(ctx, transaction.CustomerID)
	if !ok {
		return fmt.Errorf("customer %d not found", transaction.CustomerID)
	}

	m.sendText(ctx, attendant.Wuid, newRequestText, delayOpts(time.Second))

	prompt := chat.ButtonsMessage{
		Text: fmt.Sprintf("*Protocolo: %s*", transaction.Protocol),
		ContentText: fmt.Sprintf("*Cliente:* %s\n*Contato:* %s",
			customer.DisplayName(), customer.PhoneNumber),
		FooterText: "Início: " + format.Date(transaction.Initiated),
		Buttons: []chat.Button{
			{ID: chat.ButtonPayload(chat.ActionAccept, transaction.TransactionID), Text: "Aceitar Atendimento"},
			{ID: chat.ButtonPayload(chat.ActionDecline, transaction.TransactionID), Text: "Não aceitar"},
		},
	}
	if customer.HasImage() {
		prompt.ImageURL = customer.ProfilePictureURL
	}

	if _, err := m.messenger.SendButtons(ctx, attendant.Wuid, prompt, delayOpts(time.Second)); err != nil {
		return fmt.Errorf("sending service request prompt: %w", err)
	}
	return nil
}

// handleAccept binds the attendant to the transaction. Exactly one
// accept ever wins; late pressers are told the request is taken.
func (m *Manager) handleAccept(ctx context.Context, attendant *entity.Attendant, transactionID int64) error {
	bound, err := m.cache.Transaction.BindAttendant(ctx, transactionID, attendant.AttendantID)
	switch {
	case errors.Is(err, cache.ErrAlreadyAssigned), errors.Is(err, cache.ErrFinishedImmutable):
		m.sendText(ctx, attendant.Wuid, alreadyTakenText, nil)
		return nil
	case err != nil:
		return fmt.Errorf("accepting transaction %d: %w", transactionID, err)
	case bound == nil:
		return fmt.Errorf("transaction %d not found", transactionID)
	}

	customer, ok := m.cache.Customer.FindByID(ctx, bound.CustomerID)
	if !ok {
		return fmt.Errorf("customer %d not found", bound.CustomerID)
	}

	m.sendText(ctx, attendant.Wuid, fmt.Sprintf(
		"Ótimo!\nVocê está atendendo o cliente: *%s*\n*Protocolo: %s*\n\nSegue abaixo o assunto do atendimento:",
		customer.DisplayName(), bound.Protocol), delayOpts(time.Second))
	m.replaySubject(ctx, attendant.Wuid, bound)

	m.sendText(ctx, customer.Wuid, fmt.Sprintf(
		"Você está sendo atendido agora pelo atendente: *%s*", attendant.ShortName),
		delayOpts(time.Second))

	m.publish(EventAssigned, bound)
	return nil
}

// replaySubject delivers the intake log to the attendant one message at
// a time, in the order the customer sent it.
func (m *Manager) replaySubject(ctx context.Context, wuid string, transaction *entity.Transaction) {
	entries, err := decodeSubject(transaction.Subject)
	if err != nil {
		m.log.Error("corrupt subject log",
			slog.Int64("transaction_id", transaction.TransactionID), sl.Err(err))
		return
	}
	for i := range entries {
		text := entries[i].Text
		if text == "" {
			text = fmt.Sprintf("[%s recebido]", entries[i].Kind)
		}
		m.sendText(ctx, wuid, text, delayOpts(500*time.Millisecond))
	}
}

// handleDecline re-dispatches the still-unassigned transaction,
// skipping the attendant that refused it.
func (m *Manager) handleDecline(ctx context.Context, attendant *entity.Attendant, transactionID int64) error {
	transaction, ok := m.cache.Transaction.FindByID(ctx, transactionID)
	if !ok {
		return nil
	}
	if transaction.AttendantID != 0 || !transaction.Open() {
		return nil
	}

	m.sendText(ctx, attendant.Wuid, declinedText, nil)
	return m.offer(ctx, transaction, map[int64]bool{attendant.AttendantID: true})
}

// offerNextQueued pulls the oldest waiting transaction of the sector
// and dispatches it. Called when an attendant frees up.
func (m *Manager) offerNextQueued(ctx context.Context, sectorID int64) error {
	next, ok := m.cache.Transaction.NextQueued(ctx, sectorID)
	if !ok {
		return nil
	}
	return m.offer(ctx, next, nil)
}
