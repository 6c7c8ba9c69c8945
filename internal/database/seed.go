package repository

import (
	"CallService/entity"
	"CallService/internal/lib/format"
	"context"
	"log/slog"
)

const defaultPresentation = "<day>! Aqui é o <botName>, o atendente virtual da nossa central de atendimento."

// Seed makes sure a call center record exists for the bot's line, so a
// fresh deployment answers its first message instead of failing the
// lookup. Existing records are left untouched; company data is edited
// through the database afterwards.
func (m *MongoDB) Seed(ctx context.Context, phoneNumber string) error {
	existing, err := m.CallCenterByPhone(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	created, err := m.CreateCallCenter(ctx, &entity.CallCenter{
		Presentation: defaultPresentation,
		BotName:      "Atendente",
		PhoneNumber:  phoneNumber,
		CompanyName:  "Central de Atendimento",
		CreatedAt:    format.NowMs(),
	})
	if err != nil {
		return err
	}

	m.log.Info("call center seeded",
		slog.Int64("call_center_id", created.CallCenterID),
		slog.String("phone_number", phoneNumber))
	return nil
}
