package repository

import (
	"CallService/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatStageByWuid retrieves the conversation cursor for one chat.
func (m *MongoDB) ChatStageByWuid(ctx context.Context, wuid string) (*entity.ChatStage, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatStagesCollection)
	filter := bson.D{{Key: "wuid", Value: wuid}}

	var stage entity.ChatStage
	err = collection.FindOne(ctx, filter).Decode(&stage)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &stage, nil
}

// UpsertChatStage persists the conversation cursor keyed by wuid. The
// durable row is kept when a chat ends, for audit; only the stage value
// changes.
func (m *MongoDB) UpsertChatStage(ctx context.Context, stage *entity.ChatStage) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatStagesCollection)

	filter := bson.D{{Key: "wuid", Value: stage.Wuid}}
	update := bson.D{{Key: "$set", Value: stage}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}
