package commands

import (
	"CallService/bot/chat"
	"CallService/entity"
	"CallService/internal/cache"
	"CallService/internal/export"
	"CallService/internal/lib/format"
	"CallService/internal/lib/sl"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const (
	notInServiceText = "No momento, você não está em nem um atendimento; aguarde até ser vinculado a um."

	unknownCommandText = "O comando digitado não é reconhecido."

	noHistoryText = "Não existe nem um atendimento associado ao seu usuário"

	noSuchCustomerText = "O cliente solicitado não existe"

	noSuchSectorText = "O setor informado não existe ou não existem atendentes vinculados a ele."
)

// HistoryStore serves the read-only queries the export commands need,
// straight from the record store.
type HistoryStore interface {
	TransactionHistory(ctx context.Context, attendantID, customerID int64) ([]entity.Transaction, error)
	Customers(ctx context.Context) ([]entity.Customer, error)
}

// Result carries the state transitions a command produced, so the
// caller can re-dispatch freed or redirected work.
type Result struct {
	// Finished is the transaction the command closed, if any.
	Finished *entity.Transaction
	// Redirect is the new transaction &transfer opened under the
	// target sector.
	Redirect *entity.Transaction
	// Next is queued work waiting for the now-free attendant.
	Next *entity.Transaction
}

// Commands implements the attendant text-command grammar: &end, &list,
// &customer and &transfer, with key=value flags.
type Commands struct {
	cache     *cache.Service
	history   HistoryStore
	messenger chat.Messenger
	log       *slog.Logger
}

func New(cacheService *cache.Service, history HistoryStore, messenger chat.Messenger, log *slog.Logger) *Commands {
	return &Commands{
		cache:     cacheService,
		history:   history,
		messenger: messenger,
		log:       log.With(sl.Module("chat.commands")),
	}
}

// Execute runs the command carried by the message. The second return
// is false when the text does not enter the grammar at all, in which
// case the caller relays it verbatim.
func (c *Commands) Execute(ctx context.Context, attendant *entity.Attendant, msg *chat.Message) (*Result, bool) {
	name, flags, ok := parse(msg.Text)
	if !ok {
		return nil, false
	}

	switch name {
	case "end":
		return c.end(ctx, attendant), true
	case "list":
		c.list(ctx, attendant, flags)
		return &Result{}, true
	case "customer":
		return c.customer(ctx, attendant, flags), true
	case "transfer":
		return c.transfer(ctx, attendant, flags), true
	default:
		c.sendText(ctx, attendant.Wuid, unknownCommandText, delay(1200*time.Millisecond))
		return &Result{}, true
	}
}

// end finalizes the attendant's bound transaction and pulls the next
// queued request of the sector.
func (c *Commands) end(ctx context.Context, attendant *entity.Attendant) *Result {
	transaction, ok := c.cache.Transaction.FindOpenByAttendant(ctx, attendant.AttendantID)
	if !ok {
		c.sendText(ctx, attendant.Wuid, notInServiceText, delay(1500*time.Millisecond))
		return &Result{}
	}

	now := format.NowMs()
	status := entity.TransactionFinished
	finisher := entity.FinisherAttendant
	finished, err := c.cache.Transaction.Update(ctx, transaction.TransactionID, cache.TransactionPatch{
		Status:   &status,
		Finished: &now,
		Finisher: &finisher,
	})
	if err != nil || finished == nil {
		c.log.Error("finalize failed",
			slog.Int64("transaction_id", transaction.TransactionID), sl.Err(err))
		return &Result{}
	}

	if customer, found := c.cache.Customer.FindByID(ctx, finished.CustomerID); found {
		c.sendText(ctx, customer.Wuid, fmt.Sprintf(
			"Obrigado por entrar em contato conosco.\n"+
				"Estamos encerrando esse atendimento, caso precise de um novo atendimento, é só chamar aqui...\n\n"+
				"*Protocolo:* %s\n*Status:* FINALIZADO\n*Data/hora:* %s",
			finished.Protocol, format.Date(finished.Finished)), delay(1200*time.Millisecond))

		c.cache.Stage.Set(ctx, customer.Wuid, entity.StageFinishedChat, customer.CustomerID)
		c.cache.Stage.Remove(customer.Wuid)
		c.cache.Customer.Remove(customer.CustomerID)
	}

	c.cache.Transaction.Remove(finished.TransactionID)
	c.sendText(ctx, attendant.Wuid, "Atendimento finalizado com sucesso", delay(time.Second))

	result := &Result{Finished: finished}
	if next, found := c.cache.Transaction.NextQueued(ctx, attendant.CompanySectorID); found {
		result.Next = next
	}
	return result
}

// list exports the attendant's transaction history, optionally scoped
// to one customer with c=<id>.
func (c *Commands) list(ctx context.Context, attendant *entity.Attendant, flags []Flag) {
	var customerID int64
	if raw, ok := flagValue(flags, "c"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.sendText(ctx, attendant.Wuid, unknownCommandText, delay(1200*time.Millisecond))
			return
		}
		customerID = id
	}

	transactions, err := c.history.TransactionHistory(ctx, attendant.AttendantID, customerID)
	if err != nil {
		c.log.Error("history query failed",
			slog.Int64("attendant_id", attendant.AttendantID), sl.Err(err))
		return
	}
	if len(transactions) == 0 {
		c.sendText(ctx, attendant.Wuid, noHistoryText, delay(1200*time.Millisecond))
		return
	}

	rows := make([]export.TransactionRow, 0, len(transactions))
	for i := range transactions {
		rows = append(rows, c.historyRow(ctx, &transactions[i]))
	}

	data, err := export.Transactions(rows)
	if err != nil {
		c.log.Error("workbook build failed", sl.Err(err))
		return
	}
	c.sendDocument(ctx, attendant,
		export.FileName("transactions", attendant.AttendantID, attendant.ShortName),
		data, fmt.Sprintf("Total de atendimentos: *%d*", len(transactions)))
}

func (c *Commands) historyRow(ctx context.Context, t *entity.Transaction) export.TransactionRow {
	row := export.TransactionRow{
		TransactionID: t.TransactionID,
		Initiated:     format.Date(t.Initiated),
		Protocol:      t.Protocol,
		Status:        string(t.Status),
		CustomerID:    t.CustomerID,
	}
	if t.StartProcessing != 0 {
		row.StartProcessing = format.Date(t.StartProcessing)
	}
	if t.Finished != 0 {
		row.Finished = format.Date(t.Finished)
	}
	if sector, ok := c.cache.Sector.ByID(ctx, t.SectorID); ok {
		row.Sector = sector.Name
	}
	if customer, ok := c.cache.Customer.FindByID(ctx, t.CustomerID); ok {
		row.Customer = customer.DisplayName()
		row.PhoneNumber = customer.PhoneNumber
		row.Wuid = customer.Wuid
	}
	return row
}

// customer dispatches on the flag: c=<id> reports one customer,
// g=<id> opens an attendant-initiated call, no flag exports the roster.
func (c *Commands) customer(ctx context.Context, attendant *entity.Attendant, flags []Flag) *Result {
	if raw, ok := flagValue(flags, "g"); ok {
		return c.startCall(ctx, attendant, raw)
	}
	if raw, ok := flagValue(flags, "c"); ok {
		c.customerDetail(ctx, attendant, raw)
		return &Result{}
	}

	customers, err := c.history.Customers(ctx)
	if err != nil {
		c.log.Error("roster query failed", sl.Err(err))
		return &Result{}
	}
	data, err := export.Customers(customers)
	if err != nil {
		c.log.Error("workbook build failed", sl.Err(err))
		return &Result{}
	}
	c.sendDocument(ctx, attendant,
		export.FileName("customers", attendant.AttendantID, attendant.ShortName),
		data, fmt.Sprintf("Total de clientes: *%d*", len(customers)))
	return &Result{}
}

func (c *Commands) customerDetail(ctx context.Context, attendant *entity.Attendant, raw string) {
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.sendText(ctx, attendant.Wuid, unknownCommandText, delay(1200*time.Millisecond))
		return
	}

	customer, ok := c.cache.Customer.FindByID(ctx, customerID)
	if !ok {
		c.sendText(ctx, attendant.Wuid, noSuchCustomerText, delay(1500*time.Millisecond))
		return
	}

	var quoted string
	if customer.HasImage() {
		if id, err := c.messenger.SendImage(ctx, attendant.Wuid,
			customer.ProfilePictureURL, customer.ProfilePictureURL,
			delay(time.Second)); err == nil {
			quoted = id
		}
	}
	c.sendText(ctx, attendant.Wuid, fmt.Sprintf(
		"*Nome: %s*\n\n*ID:* %d\n*PushName:* %s\n*Wuid:* %s\n*Telefone:* %s",
		customer.Name, customer.CustomerID, customer.PushName,
		customer.Wuid, customer.PhoneNumber),
		&chat.SendOptions{Delay: 2 * time.Second, QuotedID: quoted})
}

// startCall opens a PROCESSING transaction for the customer with the
// attendant already bound, skipping the intake flow entirely.
func (c *Commands) startCall(ctx context.Context, attendant *entity.Attendant, raw string) *Result {
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.sendText(ctx, attendant.Wuid, unknownCommandText, delay(1200*time.Millisecond))
		return &Result{}
	}

	customer, ok := c.cache.Customer.FindByID(ctx, customerID)
	if !ok {
		c.sendText(ctx, attendant.Wuid, noSuchCustomerText, delay(1500*time.Millisecond))
		return &Result{}
	}

	now := format.NowMs()
	transaction, err := c.cache.Transaction.Create(ctx, &entity.Transaction{
		CustomerID:      customer.CustomerID,
		AttendantID:     attendant.AttendantID,
		SectorID:        attendant.CompanySectorID,
		Status:          entity.TransactionProcessing,
		StartProcessing: now,
		Subject:         "initiated by attendant",
	})
	if err != nil {
		c.log.Error("attendant-initiated call failed",
			slog.Int64("customer_id", customerID), sl.Err(err))
		return &Result{}
	}

	protocol := transaction.ComputeProtocol()
	if _, err := c.cache.Transaction.Update(ctx, transaction.TransactionID,
		cache.TransactionPatch{Protocol: &protocol}); err != nil {
		c.log.Error("protocol assignment failed",
			slog.Int64("transaction_id", transaction.TransactionID), sl.Err(err))
	}
	c.cache.Stage.Set(ctx, customer.Wuid, entity.StageTransaction, customer.CustomerID)

	c.sendText(ctx, customer.Wuid, fmt.Sprintf(
		"%s *%s*\nO atendente %s iniciou um atendimento com você.\nEsse é o protocolo do atendimento *%s*",
		format.TimeDay(time.Now().Hour()), customer.DisplayName(),
		attendant.ShortName, protocol), delay(1200*time.Millisecond))
	c.sendText(ctx, attendant.Wuid, fmt.Sprintf(
		"Tudo certo! O atendimento já foi iniciado e você já pode conversar\n"+
			"Esse é o protocolo do atendimento: *%s*", protocol), delay(1200*time.Millisecond))

	return &Result{}
}

// transfer finalizes the current transaction and reopens the customer
// under the target sector, carrying a note of the redirect origin.
func (c *Commands) transfer(ctx context.Context, attendant *entity.Attendant, flags []Flag) *Result {
	name, ok := flagValue(flags, "s")
	if !ok {
		c.sendText(ctx, attendant.Wuid, unknownCommandText, delay(1200*time.Millisecond))
		return &Result{}
	}

	sector, ok := c.cache.Sector.ByName(ctx, name)
	if !ok {
		c.sendText(ctx, attendant.Wuid, noSuchSectorText, delay(1200*time.Millisecond))
		return &Result{}
	}

	transaction, ok := c.cache.Transaction.FindOpenByAttendant(ctx, attendant.AttendantID)
	if !ok {
		c.sendText(ctx, attendant.Wuid, notInServiceText, delay(1500*time.Millisecond))
		return &Result{}
	}
	customer, ok := c.cache.Customer.FindByID(ctx, transaction.CustomerID)
	if !ok {
		c.log.Error("customer missing for transfer",
			slog.Int64("transaction_id", transaction.TransactionID))
		return &Result{}
	}

	now := format.NowMs()
	status := entity.TransactionFinished
	finisher := entity.FinisherAttendant
	finished, err := c.cache.Transaction.Update(ctx, transaction.TransactionID, cache.TransactionPatch{
		Status:   &status,
		Finished: &now,
		Finisher: &finisher,
	})
	if err != nil || finished == nil {
		c.log.Error("finalize failed",
			slog.Int64("transaction_id", transaction.TransactionID), sl.Err(err))
		return &Result{}
	}
	c.cache.Transaction.Remove(finished.TransactionID)

	c.sendText(ctx, customer.Wuid, fmt.Sprintf(
		"Esse atendimento foi encerrado.\nAgora você está sendo redirecionado para o setor *%s*.",
		sector.Name), delay(1200*time.Millisecond))

	redirect, err := c.cache.Transaction.Create(ctx, &entity.Transaction{
		CustomerID: customer.CustomerID,
		SectorID:   sector.SectorID,
		Subject:    c.redirectNote(ctx, attendant),
	})
	if err != nil {
		c.log.Error("redirect transaction failed",
			slog.Int64("customer_id", customer.CustomerID), sl.Err(err))
		return &Result{Finished: finished}
	}

	protocol := redirect.ComputeProtocol()
	updated, err := c.cache.Transaction.Update(ctx, redirect.TransactionID,
		cache.TransactionPatch{Protocol: &protocol})
	if err == nil && updated != nil {
		redirect = updated
	}

	c.sendText(ctx, customer.Wuid,
		fmt.Sprintf("Esse é o protocolo do atendimento *%s*", protocol),
		delay(1200*time.Millisecond))

	result := &Result{Finished: finished, Redirect: redirect}
	if next, found := c.cache.Transaction.NextQueued(ctx, attendant.CompanySectorID); found {
		result.Next = next
	}
	return result
}

// redirectNote builds the one-entry subject log of a transferred
// transaction, so the next attendant sees where the customer came from.
func (c *Commands) redirectNote(ctx context.Context, attendant *entity.Attendant) string {
	origin := "?"
	if sector, ok := c.cache.Sector.ByID(ctx, attendant.CompanySectorID); ok {
		origin = sector.Name
	}
	note := []chat.Message{{
		FromSelf: true,
		Kind:     "text",
		Text: fmt.Sprintf("Cliente redirecionado do setor *%s*.\n*Responsável:* %s\n*Contato:* %s",
			origin, attendant.ShortName, attendant.PhoneNumber),
	}}
	raw, err := json.Marshal(note)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (c *Commands) sendDocument(ctx context.Context, attendant *entity.Attendant, fileName string, data []byte, total string) {
	doc := chat.Document{
		FileName: fileName,
		MimeType: export.MimeXLSX,
		Data:     data,
	}
	id, err := c.messenger.SendDocument(ctx, attendant.Wuid, doc, delay(1500*time.Millisecond))
	if err != nil {
		c.log.Error("document send failed",
			slog.String("file", fileName), sl.Err(err))
		return
	}
	c.sendText(ctx, attendant.Wuid, total,
		&chat.SendOptions{Delay: 500 * time.Millisecond, QuotedID: id})
}

func (c *Commands) sendText(ctx context.Context, wuid, text string, opts *chat.SendOptions) {
	if _, err := c.messenger.SendText(ctx, wuid, text, opts); err != nil {
		c.log.Error("send failed", slog.String("wuid", wuid), sl.Err(err))
	}
}

func delay(d time.Duration) *chat.SendOptions {
	return &chat.SendOptions{Delay: d}
}
