package flow

import (
	"CallService/bot/chat"
	"CallService/entity"
	"CallService/internal/cache"
	"CallService/internal/lib/format"
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	askNameText = "Digite agora o seu nome:"

	invalidNameText = "A mensagem que você enviou não é válida para ser atribuída a um nome.\n" +
		"Informe o seu nome:"

	askSubjectText = "Informe agora o assunto do seu atendimento.\n" +
		"Pode ser um texto, ou vídeo, ou imagem, etc.\n" +
		"E quando você terminar, envie a palavra:\n*FIM*"

	sectorErrorText = "👆🏼👆🏼 Houve um erro ao atribuir esta categoria!\n" +
		"Tente novamente informar a categoria"

	waitQueueText = "Ótimo! Aguarde um momento!\nLogo você será atendido pela nossa equipe.\n" +
		"Para cancelar o atendimento, a qualquer momento, digite: *-1*"

	waitReminderText = "Aguarde um momento!\nLogo você será atendido pela nossa equipe.\n" +
		"Para cancelar o atendimento, a qualquer momento, digite: *-1*"

	cancelledText = "Tudo certo!\nO seu atendimento foi finalizado com sucesso."

	subjectEndToken = "fim"
	cancelToken     = "-1"
)

// initialChat greets a first-time (or returning) customer, opens the
// transaction and asks for the name.
func (m *Manager) initialChat(ctx context.Context, msg *chat.Message, customer *entity.Customer) error {
	callCenter, err := m.cache.CallCenter(ctx, m.botNumber)
	if err != nil {
		return err
	}

	m.sendText(ctx, msg.Wuid, greeting(callCenter, time.Now()), delayOpts(time.Second))
	m.sendText(ctx, msg.Wuid, askNameText, delayOpts(time.Second))

	m.cache.Stage.Set(ctx, msg.Wuid, entity.StageSetName, customer.CustomerID)

	transaction, err := m.cache.Transaction.Create(ctx, &entity.Transaction{
		CustomerID: customer.CustomerID,
	})
	if err != nil {
		return fmt.Errorf("opening transaction: %w", err)
	}
	m.publish(EventCreated, transaction)
	return nil
}

// setName validates and stores the customer's name, assigns the
// protocol and moves on to sector selection or straight to the subject
// when only one sector exists.
func (m *Manager) setName(ctx context.Context, msg *chat.Message, customer *entity.Customer) error {
	name := strings.TrimSpace(msg.Text)
	if name == "" || msg.IsNumeric() {
		m.sendText(ctx, msg.Wuid, invalidNameText,
			&chat.SendOptions{Delay: 1500 * time.Millisecond, QuotedID: msg.ID})
		return nil
	}

	m.cache.Customer.Update(ctx, customer.CustomerID, cache.CustomerPatch{Name: &name})

	transaction, ok := m.cache.Transaction.FindOpenByCustomer(ctx, customer.CustomerID)
	if !ok {
		return fmt.Errorf("no open transaction for customer %d", customer.CustomerID)
	}

	protocol := transaction.ComputeProtocol()
	if _, err := m.cache.Transaction.Update(ctx, transaction.TransactionID,
		cache.TransactionPatch{Protocol: &protocol}); err != nil {
		return fmt.Errorf("assigning protocol: %w", err)
	}

	m.sendText(ctx, msg.Wuid,
		fmt.Sprintf("Ótimo %s.\n\nEsse é o protocolo do seu atendimento: *%s*", name, protocol),
		delayOpts(time.Second))

	sectors := m.cache.Sector.All(ctx)
	if len(sectors) <= 1 {
		m.cache.Stage.Set(ctx, msg.Wuid, entity.StageSetSubject, customer.CustomerID)
		m.sendText(ctx, msg.Wuid, askSubjectText, delayOpts(time.Second))
		return nil
	}

	m.cache.Stage.Set(ctx, msg.Wuid, entity.StageCheckSector, customer.CustomerID)

	callCenter, err := m.cache.CallCenter(ctx, m.botNumber)
	if err != nil {
		return err
	}

	rows := make([]chat.Row, 0, len(sectors))
	for _, sector := range sectors {
		rows = append(rows, chat.Row{
			Title:       strings.ToUpper(sector.Name),
			Description: " ",
			RowID: chat.RowPayload(customer.CustomerID, transaction.TransactionID,
				sector.CallCenterID, sector.SectorID),
		})
	}
	list := chat.ListMessage{
		Title:       "*Com qual setor você deseja falar?*",
		Description: "Clique no botão e escolha um dos setores.",
		ButtonText:  "SETORES",
		FooterText:  callCenter.CompanyName + " - " + callCenter.URL,
		Sections: []chat.Section{
			{Title: "SETORES", Rows: rows},
			{Title: "OUTRAS OPÇÕES", Rows: []chat.Row{
				{Title: "Nenhuma das alternativas acima", Description: " ", RowID: "0"},
			}},
		},
	}
	if _, err := m.messenger.SendList(ctx, msg.Wuid, list,
		delayOpts(1500*time.Millisecond)); err != nil {
		return fmt.Errorf("sending sector list: %w", err)
	}
	return nil
}

// checkSector binds the chosen sector to the transaction. Free text and
// list selection both resolve the same transaction.
func (m *Manager) checkSector(ctx context.Context, msg *chat.Message, customer *entity.Customer) error {
	var sector *entity.Sector
	var transaction *entity.Transaction

	if msg.ListReply != nil {
		if s, ok := m.cache.Sector.ByID(ctx, msg.ListReply.SectorID); ok {
			if t, found := m.cache.Transaction.FindByID(ctx, msg.ListReply.TransactionID); found {
				sector, transaction = s, t
			}
		}
	} else if msg.Text != "" {
		if s, ok := m.cache.Sector.ByName(ctx, msg.Text); ok {
			if t, found := m.cache.Transaction.FindOpenByCustomer(ctx, customer.CustomerID); found {
				sector, transaction = s, t
			}
		}
	}

	if sector == nil || transaction == nil {
		m.sendText(ctx, msg.Wuid, sectorErrorText,
			&chat.SendOptions{Delay: 1500 * time.Millisecond, QuotedID: msg.ID})
		return nil
	}

	m.cache.Stage.Set(ctx, msg.Wuid, entity.StageSetSubject, customer.CustomerID)
	if _, err := m.cache.Transaction.Update(ctx, transaction.TransactionID,
		cache.TransactionPatch{SectorID: &sector.SectorID}); err != nil {
		return fmt.Errorf("binding sector: %w", err)
	}
	m.sendText(ctx, msg.Wuid, askSubjectText, delayOpts(time.Second))
	return nil
}

// setSubject accumulates raw envelopes on the subject log until the
// customer sends "fim", then freezes the log and queues the request.
func (m *Manager) setSubject(ctx context.Context, msg *chat.Message, customer *entity.Customer) error {
	transaction, ok := m.cache.Transaction.FindOpenByCustomer(ctx, customer.CustomerID)
	if !ok {
		return fmt.Errorf("no open transaction for customer %d", customer.CustomerID)
	}

	if msg.NormalizedText() != subjectEndToken {
		subject, err := appendSubject(transaction.Subject, msg)
		if err != nil {
			return err
		}
		if _, err := m.cache.Transaction.Update(ctx, transaction.TransactionID,
			cache.TransactionPatch{Subject: &subject}); err != nil {
			return fmt.Errorf("appending subject: %w", err)
		}
		return nil
	}

	m.cache.Stage.Set(ctx, msg.Wuid, entity.StageTransaction, customer.CustomerID)
	m.sendText(ctx, msg.Wuid, waitQueueText, delayOpts(1500*time.Millisecond))

	queued, _ := m.cache.Transaction.FindByID(ctx, transaction.TransactionID)
	m.publish(EventQueued, queued)
	return m.dispatchQueue(ctx, queued)
}

// transactionStage handles a customer message while waiting for, or
// talking to, an attendant.
func (m *Manager) transactionStage(ctx context.Context, msg *chat.Message, customer *entity.Customer) error {
	transaction, ok := m.cache.Transaction.FindOpenByCustomer(ctx, customer.CustomerID)
	if !ok {
		return fmt.Errorf("no open transaction for customer %d", customer.CustomerID)
	}

	text := strings.TrimSpace(msg.Text)
	if text == cancelToken || text == "*"+cancelToken+"*" {
		return m.cancelByCustomer(ctx, msg, customer, transaction)
	}

	if transaction.AttendantID == 0 {
		m.sendText(ctx, msg.Wuid, waitReminderText, delayOpts(1500*time.Millisecond))
		return nil
	}

	attendant, ok := m.cache.Attendant.FindByID(ctx, transaction.AttendantID)
	if !ok {
		return fmt.Errorf("attendant %d not found", transaction.AttendantID)
	}

	relayed := msg.Text
	if relayed == "" {
		relayed = fmt.Sprintf("[%s recebido]", msg.Kind)
	}
	citation := fmt.Sprintf("*Protocolo: %s*\n*Cliente:* %s\n\n%s",
		transaction.Protocol, customer.DisplayName(), relayed)
	m.sendText(ctx, attendant.Wuid, citation, delayOpts(1500*time.Millisecond))
	return nil
}

// cancelByCustomer finalizes the transaction on the customer's "-1",
// notifying the bound attendant when there is one.
func (m *Manager) cancelByCustomer(ctx context.Context, msg *chat.Message, customer *entity.Customer, transaction *entity.Transaction) error {
	now := format.NowMs()
	status := entity.TransactionFinished
	finisher := entity.FinisherCustomer
	finished, err := m.cache.Transaction.Update(ctx, transaction.TransactionID, cache.TransactionPatch{
		Status:   &status,
		Finished: &now,
		Finisher: &finisher,
	})
	if err != nil {
		return fmt.Errorf("cancelling transaction: %w", err)
	}

	m.sendText(ctx, msg.Wuid, cancelledText, delayOpts(1500*time.Millisecond))

	if transaction.AttendantID != 0 {
		if attendant, ok := m.cache.Attendant.FindByID(ctx, transaction.AttendantID); ok {
			m.sendText(ctx, attendant.Wuid, fmt.Sprintf(
				"*Protocolo: %s*\n*Situação:* cancelado pelo cliente\n*Status:* %s\n*Data/Hora:* %s",
				transaction.Protocol, entity.TransactionFinished, format.Date(now)), nil)
		}
	}

	m.cache.Stage.Set(ctx, msg.Wuid, entity.StageFinishedChat, customer.CustomerID)
	m.cache.Stage.Remove(msg.Wuid)
	m.cache.Customer.Remove(customer.CustomerID)
	m.cache.Transaction.Remove(transaction.TransactionID)

	m.publish(EventFinished, finished)
	return nil
}
